package celrule

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/nao1215/a11yscan/internal/rules/vocab"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Strings(),

		// `isValidRole` reports whether a token is a WAI-ARIA role.
		// Example: isValidRole(node.attributes.role).
		cel.Function("isValidRole",
			cel.Overload("is_valid_role_string", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(func(role ref.Val) ref.Val {
					roleValue, ok := role.(types.String).Value().(string)
					if !ok {
						return types.NewErr("isValidRole: invalid string value")
					}
					return types.Bool(vocab.IsValidRole(roleValue))
				}),
			),
		),

		// `isValidLang` reports whether a value is a well-formed language tag.
		// Example: isValidLang(node.attributes.lang).
		cel.Function("isValidLang",
			cel.Overload("is_valid_lang_string", []*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(func(lang ref.Val) ref.Val {
					langValue, ok := lang.(types.String).Value().(string)
					if !ok {
						return types.NewErr("isValidLang: invalid string value")
					}
					return types.Bool(vocab.IsValidLang(langValue))
				}),
			),
		),

		// `tokens` splits a value on whitespace.
		// Example: tokens(node.attributes.role).all(r, isValidRole(r)).
		cel.Function("tokens",
			cel.Overload("tokens_string", []*cel.Type{cel.StringType}, cel.ListType(cel.StringType),
				cel.UnaryBinding(func(value ref.Val) ref.Val {
					s, ok := value.(types.String).Value().(string)
					if !ok {
						return types.NewErr("tokens: invalid string value")
					}
					return types.NewStringList(types.DefaultTypeAdapter, strings.Fields(s))
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
