package metadata

import (
	"sort"
	"sync"

	"golang.org/x/text/language"

	"github.com/nao1215/a11yscan/internal/model"
)

// RuleInfo is the descriptive metadata of a rule.
type RuleInfo struct {
	// Description says what the rule checks.
	Description string `yaml:"description" json:"description"`

	// Help is a short summary of how to satisfy the rule.
	Help string `yaml:"help" json:"help"`

	// HelpURL links to documentation for the rule.
	HelpURL string `yaml:"helpUrl" json:"helpUrl"`

	// Impact is used for failed nodes when none of their checks carries one.
	Impact model.Impact `yaml:"impact" json:"impact"`

	// Tags classify the rule.
	Tags []string `yaml:"tags" json:"tags"`
}

// CheckInfo holds the message templates of a check, one per outcome.
//
// Templates use text/template syntax. The check's Data is available as .Data
// and the rule identifier as .RuleID, e.g. "Element has {{.Data}} roles".
type CheckInfo struct {
	Pass       string       `yaml:"pass" json:"pass"`
	Fail       string       `yaml:"fail" json:"fail"`
	Incomplete string       `yaml:"incomplete" json:"incomplete"`
	Impact     model.Impact `yaml:"impact" json:"impact"`
}

// Template returns the template for the given outcome.
// Inapplicable checks have no message.
func (c CheckInfo) Template(o model.Outcome) string {
	switch o {
	case model.OutcomePassed:
		return c.Pass
	case model.OutcomeFailed:
		return c.Fail
	case model.OutcomeIncomplete:
		return c.Incomplete
	case model.OutcomeInapplicable:
		return ""
	default:
		return ""
	}
}

// localeEntries holds the entries registered for one locale.
type localeEntries struct {
	rules  map[string]RuleInfo
	checks map[string]CheckInfo
}

func newLocaleEntries() *localeEntries {
	return &localeEntries{
		rules:  make(map[string]RuleInfo),
		checks: make(map[string]CheckInfo),
	}
}

// Catalog stores rule and check metadata per locale.
//
// Design decision: The fallback locale is fixed at construction and is always
// the first candidate given to the language matcher. Entries missing from a
// more specific locale are looked up in the fallback, so a partial
// translation never loses text.
//
// Catalog is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	fallback language.Tag
	locales  map[language.Tag]*localeEntries

	// tags and matcher are rebuilt lazily after a new locale is added.
	tags    []language.Tag
	matcher language.Matcher
}

// NewCatalog creates an empty catalog whose default locale is fallback.
func NewCatalog(fallback language.Tag) *Catalog {
	return &Catalog{
		fallback: fallback,
		locales: map[language.Tag]*localeEntries{
			fallback: newLocaleEntries(),
		},
	}
}

// Fallback returns the catalog's default locale.
func (c *Catalog) Fallback() language.Tag {
	return c.fallback
}

// AddRule sets the metadata of a rule for a locale, replacing any earlier entry.
func (c *Catalog) AddRule(tag language.Tag, ruleID string, info RuleInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries(tag).rules[ruleID] = info
}

// AddCheck sets the message templates of a check for a locale, replacing any
// earlier entry.
func (c *Catalog) AddCheck(tag language.Tag, checkID string, info CheckInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries(tag).checks[checkID] = info
}

// entries returns the entries of a locale, creating them when needed.
// The caller must hold the write lock.
func (c *Catalog) entries(tag language.Tag) *localeEntries {
	e, ok := c.locales[tag]
	if !ok {
		e = newLocaleEntries()
		c.locales[tag] = e
		c.matcher = nil
	}
	return e
}

// Locales returns the locales that have entries, the default first and the
// rest sorted by name.
func (c *Catalog) Locales() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sortedTags()
}

// sortedTags must be called with the lock held.
func (c *Catalog) sortedTags() []language.Tag {
	rest := make([]language.Tag, 0, len(c.locales))
	for tag := range c.locales {
		if tag != c.fallback {
			rest = append(rest, tag)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		return rest[i].String() < rest[j].String()
	})
	return append([]language.Tag{c.fallback}, rest...)
}

// Lookup returns a view of the catalog for the best match of locale.
//
// locale may be a BCP 47 tag ("pt-BR") or an Accept-Language style list
// ("fr-CH, fr;q=0.9, en;q=0.8"). An empty or unparsable locale selects the
// default locale.
func (c *Catalog) Lookup(locale string) *View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.matcher == nil {
		c.tags = c.sortedTags()
		c.matcher = language.NewMatcher(c.tags)
	}

	selected := c.fallback
	if locale != "" {
		if desired, _, err := language.ParseAcceptLanguage(locale); err == nil && len(desired) > 0 {
			_, index, confidence := c.matcher.Match(desired...)
			if confidence != language.No {
				selected = c.tags[index]
			}
		}
	}

	return &View{
		tag:      selected,
		primary:  c.locales[selected],
		fallback: c.locales[c.fallback],
		mu:       &c.mu,
	}
}

// View is a locale-resolved, read-only view of a Catalog.
type View struct {
	tag      language.Tag
	primary  *localeEntries
	fallback *localeEntries
	mu       *sync.RWMutex
}

// Tag returns the locale the view resolved to.
func (v *View) Tag() language.Tag {
	return v.tag
}

// Rule returns the metadata of a rule, falling back to the default locale.
func (v *View) Rule(ruleID string) (RuleInfo, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if info, ok := v.primary.rules[ruleID]; ok {
		return info, true
	}
	info, ok := v.fallback.rules[ruleID]
	return info, ok
}

// Check returns the templates of a check, falling back to the default locale.
func (v *View) Check(checkID string) (CheckInfo, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if info, ok := v.primary.checks[checkID]; ok {
		return info, true
	}
	info, ok := v.fallback.checks[checkID]
	return info, ok
}
