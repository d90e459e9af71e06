package config

import (
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/text/language"

	"github.com/nao1215/a11yscan/internal/metadata"
	"github.com/nao1215/a11yscan/internal/rule"
	"github.com/nao1215/a11yscan/internal/rules/celrule"
	"github.com/nao1215/a11yscan/internal/rules/scriptrule"
)

// Rule kinds.
const (
	// KindCEL is a rule written as CEL expressions. See internal/rules/celrule.
	KindCEL = "cel"

	// KindScript is a rule written in JavaScript. See internal/rules/scriptrule.
	KindScript = "script"
)

// RuleConfig is one rule of a rule file.
type RuleConfig struct {
	// ID identifies the rule. Required.
	ID string `yaml:"id"`

	// Kind selects the rule engine: "cel" or "script".
	Kind string `yaml:"kind"`

	// ExcludeHidden makes the rule skip hidden content.
	ExcludeHidden bool `yaml:"excludeHidden,omitempty"`

	// Metadata describes the rule in the file's locale. Its tags are also
	// the tags of the registered definition.
	Metadata metadata.RuleInfo `yaml:"metadata,omitempty"`

	// Spec is the engine-specific definition, decoded into celrule.Spec or
	// scriptrule.Spec.
	Spec map[string]any `yaml:"spec"`
}

// Translation holds rule and check metadata for one additional locale.
type Translation struct {
	Rules  map[string]metadata.RuleInfo  `yaml:"rules,omitempty"`
	Checks map[string]metadata.CheckInfo `yaml:"checks,omitempty"`
}

// File represents the structure of a rule file (.a11yscan or the built-in
// rule set).
type File struct {
	// Locale is the language of the metadata and check messages written
	// inline. Defaults to DefaultLocale.
	Locale string `yaml:"locale,omitempty"`

	// Rules are registered in file order.
	Rules []RuleConfig `yaml:"rules,omitempty"`

	// Checks maps check ids to their message templates.
	Checks map[string]metadata.CheckInfo `yaml:"checks,omitempty"`

	// Translations maps locale tags to translated metadata.
	Translations map[string]Translation `yaml:"translations,omitempty"`
}

// Definition builds the rule definition of rc, compiling its spec.
func (rc RuleConfig) Definition() (*rule.Definition, error) {
	if rc.ID == "" {
		return nil, ErrNoRuleID
	}

	var (
		evaluator rule.Evaluator
		err       error
	)
	switch rc.Kind {
	case KindCEL:
		var spec celrule.Spec
		if err := decodeSpec(rc.Spec, &spec); err != nil {
			return nil, fmt.Errorf("rule %s: %w", rc.ID, err)
		}
		evaluator, err = celrule.New(rc.ID, spec)
	case KindScript:
		var spec scriptrule.Spec
		if err := decodeSpec(rc.Spec, &spec); err != nil {
			return nil, fmt.Errorf("rule %s: %w", rc.ID, err)
		}
		evaluator, err = scriptrule.New(rc.ID, spec)
	default:
		return nil, fmt.Errorf("rule %s: %w: %q", rc.ID, ErrUnknownRuleKind, rc.Kind)
	}
	if err != nil {
		return nil, err
	}

	return &rule.Definition{
		ID:            rc.ID,
		ExcludeHidden: rc.ExcludeHidden,
		Tags:          rc.Metadata.Tags,
		Evaluator:     evaluator,
	}, nil
}

// decodeSpec decodes a rule spec map into out. Unknown keys are rejected so
// typos in rule files are reported instead of ignored.
func decodeSpec(in map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRuleSpec, err)
	}
	return nil
}

// BuildRegistry registers the rules of files, in order, into a new registry.
//
// Design decision: Lookup returns the first definition with a given id, so
// passing the user's file before the built-in set lets user rules shadow
// built-in rules of the same id. The registry logs each shadowed id.
func BuildRegistry(logger *slog.Logger, files ...*File) (*rule.Registry, error) {
	registry := rule.NewRegistry(rule.WithRegistryLogger(logger))

	for _, f := range files {
		if f == nil {
			continue
		}
		for _, rc := range f.Rules {
			def, err := rc.Definition()
			if err != nil {
				return nil, err
			}
			if err := registry.Add(def); err != nil {
				return nil, fmt.Errorf("rule %s: %w", rc.ID, err)
			}
		}
	}

	return registry, nil
}

// BuildCatalog collects the metadata of files into a catalog whose default
// locale is DefaultLocale.
//
// files are given in priority order, as for BuildRegistry: metadata from an
// earlier file replaces metadata of the same id from a later one.
func BuildCatalog(files ...*File) (*metadata.Catalog, error) {
	catalog := metadata.NewCatalog(language.MustParse(DefaultLocale))

	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		if f == nil {
			continue
		}

		tag, err := parseLocale(f.Locale)
		if err != nil {
			return nil, err
		}
		for _, rc := range f.Rules {
			catalog.AddRule(tag, rc.ID, rc.Metadata)
		}
		for id, ci := range f.Checks {
			catalog.AddCheck(tag, id, ci)
		}

		for locale, tr := range f.Translations {
			trTag, err := parseLocale(locale)
			if err != nil {
				return nil, err
			}
			for id, info := range tr.Rules {
				catalog.AddRule(trTag, id, info)
			}
			for id, ci := range tr.Checks {
				catalog.AddCheck(trTag, id, ci)
			}
		}
	}

	return catalog, nil
}

// parseLocale parses a locale tag; empty means DefaultLocale.
func parseLocale(locale string) (language.Tag, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", ErrInvalidLocale, locale)
	}
	return tag, nil
}
