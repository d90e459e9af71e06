package celrule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// celMutex serializes environment creation and compilation.
var celMutex sync.Mutex

// Environment is a CEL environment with the rule variables and functions
// declared.
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates an Environment. Extra options are appended to the
// rule declarations.
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append([]cel.EnvOption{
		cel.Variable("node", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("options", cel.MapType(cel.StringType, cel.DynType)),
		cel.Lib(&lib{}),
	}, opts...)

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &Environment{env: env}, nil
}

// MustNewEnvironment creates an Environment and panics on error.
func MustNewEnvironment(opts ...cel.EnvOption) *Environment {
	env, err := NewEnvironment(opts...)
	if err != nil {
		panic(err)
	}
	return env
}

// Compile compiles an expression into a program.
//
//nolint:ireturn // Following CEL's function signature.
func (e *Environment) Compile(expression string) (cel.Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return program, nil
}

// defaultEnv is shared by rules compiled without an explicit environment.
var (
	defaultEnv     *Environment
	defaultEnvOnce sync.Once
	defaultEnvErr  error
)

// DefaultEnvironment returns the shared environment.
func DefaultEnvironment() (*Environment, error) {
	defaultEnvOnce.Do(func() {
		defaultEnv, defaultEnvErr = NewEnvironment()
	})
	return defaultEnv, defaultEnvErr
}
