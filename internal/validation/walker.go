package validation

import (
	"sort"
	"strconv"
	"strings"
)

// Rule names the check applied to a string leaf.
type Rule string

const (
	RuleSkip     Rule = ""
	RuleText     Rule = "text"
	RuleEmail    Rule = "email"
	RuleMobile   Rule = "mobile"
	RuleUUID     Rule = "uuid"
	RulePostcode Rule = "postcode"
)

// Func validates one leaf. field is the leaf's own key, used for messages.
type Func func(value, field string) error

// Classifier picks the rule for a string leaf from its key and value.
type Classifier func(key, value string) Rule

// Walker validates arbitrary decoded JSON (maps, slices, scalars) and reports
// every violation keyed by its path, e.g. "address.postcode" or
// "organisations[2].organisation_name".
type Walker struct {
	classify Classifier
	rules    map[Rule]Func
}

// NewWalker returns a walker using classify and rules. A rule missing from
// the table is treated as RuleSkip.
func NewWalker(classify Classifier, rules map[Rule]Func) *Walker {
	return &Walker{classify: classify, rules: rules}
}

// DefaultRules maps each Rule to the matching field validator.
func DefaultRules() map[Rule]Func {
	return map[Rule]Func{
		RuleText:     NonEmpty,
		RuleEmail:    EmailField,
		RuleMobile:   MobileField,
		RuleUUID:     UUIDField,
		RulePostcode: Postcode,
	}
}

// DefaultClassifier classifies by key name.
func DefaultClassifier(key, _ string) Rule {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "email"):
		return RuleEmail
	case strings.Contains(k, "mobile"), strings.Contains(k, "phone"):
		return RuleMobile
	case strings.HasSuffix(k, "reference"):
		return RuleUUID
	case strings.Contains(k, "postcode"):
		return RulePostcode
	case k == "address_line_2":
		return RuleSkip
	}
	return RuleText
}

func DefaultWalker() *Walker {
	return NewWalker(DefaultClassifier, DefaultRules())
}

// Validate walks data and returns one Validation error with every violation,
// or nil.
func (w *Walker) Validate(data any) error {
	c := NewCollector()
	w.walk(data, "", "", c)
	return c.Err()
}

func (w *Walker) walk(data any, path, key string, c *Collector) {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			w.walk(v[k], joinPath(path, k), k, c)
		}
	case []any:
		for i, item := range v {
			w.walk(item, path+"["+strconv.Itoa(i)+"]", key, c)
		}
	case string:
		fn := w.rules[w.classify(key, v)]
		if fn == nil {
			return
		}
		field := key
		if field == "" {
			field = "value"
		}
		if path == "" {
			path = field
		}
		c.AddAt(path, fn(v, field))
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
