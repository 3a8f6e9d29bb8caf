// Package filter decides which discovered paths are excluded from tidy checks
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	prerrors "github.com/mrz1836/go-tidy-check/internal/errors"
)

// Kind identifies how a Rule matches a path
type Kind int

const (
	// KindInvalid is the zero value and never matches
	KindInvalid Kind = iota
	// KindPrefix matches paths starting with a literal string
	KindPrefix
	// KindPattern matches paths containing a regular expression match
	KindPattern
)

// DefaultBuildDir is the build-artifact directory excluded when no rules are given
const DefaultBuildDir = "blib"

// Rule is a single exclusion criterion: a literal prefix or a pattern
type Rule struct {
	kind    Kind
	prefix  string
	pattern *regexp.Regexp
}

// Rules is an ordered list of exclusion rules
type Rules []Rule

// Prefix returns a rule excluding paths that start with s
func Prefix(s string) Rule {
	return Rule{kind: KindPrefix, prefix: s}
}

// Pattern returns a rule excluding paths matched anywhere by re
func Pattern(re *regexp.Regexp) Rule {
	return Rule{kind: KindPattern, pattern: re}
}

// MustPattern compiles expr and returns a pattern rule, panicking on a bad expression
func MustPattern(expr string) Rule {
	return Pattern(regexp.MustCompile(expr))
}

// ParseRule parses the string form of a rule: /expr/ is a pattern, anything else a prefix
func ParseRule(s string) (Rule, error) {
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return Rule{}, prerrors.NewRuleError(prerrors.ErrInvalidRule, fmt.Sprintf("%s: %v", s, err))
		}
		return Pattern(re), nil
	}
	if s == "" {
		return Rule{}, prerrors.NewRuleError(prerrors.ErrInvalidRule, "empty prefix")
	}
	return Prefix(s), nil
}

// ParseRules parses each string with ParseRule, keeping order
func ParseRules(values []string) (Rules, error) {
	rules := make(Rules, 0, len(values))
	for _, v := range values {
		rule, err := ParseRule(v)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DefaultRules returns the rule set used when the caller supplies none
func DefaultRules() Rules {
	return Rules{MustPattern("^" + regexp.QuoteMeta(DefaultBuildDir))}
}

// Kind returns the rule kind
func (r Rule) Kind() Kind {
	return r.kind
}

// String returns the rule in its parseable string form
func (r Rule) String() string {
	switch r.kind {
	case KindPrefix:
		return r.prefix
	case KindPattern:
		if r.pattern == nil {
			return "//"
		}
		return "/" + r.pattern.String() + "/"
	default:
		return "<invalid>"
	}
}

// Matches reports whether the rule excludes path
func (r Rule) Matches(path string) bool {
	switch r.kind {
	case KindPrefix:
		return strings.HasPrefix(path, r.prefix)
	case KindPattern:
		return r.pattern != nil && r.pattern.MatchString(path)
	default:
		return false
	}
}

// IsExcluded reports whether any rule, in order, matches path
func IsExcluded(path string, rules []Rule) bool {
	for _, rule := range rules {
		if rule.Matches(path) {
			return true
		}
	}
	return false
}

// Validate returns an error for zero-value rules or patterns without a matcher
func Validate(rules []Rule) error {
	for i, rule := range rules {
		switch rule.kind {
		case KindPrefix:
			continue
		case KindPattern:
			if rule.pattern == nil {
				return prerrors.NewRuleError(prerrors.ErrInvalidRule, fmt.Sprintf("rule %d has no pattern", i))
			}
		default:
			return prerrors.NewRuleError(prerrors.ErrInvalidRule, fmt.Sprintf("rule %d is neither a prefix nor a pattern", i))
		}
	}
	return nil
}

// UnmarshalYAML decodes a rule from a string or a {prefix|pattern: value} mapping
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		rule, err := ParseRule(node.Value)
		if err != nil {
			return err
		}
		*r = rule
		return nil
	case yaml.MappingNode:
		var raw struct {
			Prefix  *string `yaml:"prefix"`
			Pattern *string `yaml:"pattern"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		switch {
		case raw.Prefix != nil && raw.Pattern == nil:
			if *raw.Prefix == "" {
				return prerrors.NewRuleError(prerrors.ErrInvalidRule, fmt.Sprintf("line %d: empty prefix", node.Line))
			}
			*r = Prefix(*raw.Prefix)
		case raw.Pattern != nil && raw.Prefix == nil:
			re, err := regexp.Compile(*raw.Pattern)
			if err != nil {
				return prerrors.NewRuleError(prerrors.ErrInvalidRule, fmt.Sprintf("line %d: %v", node.Line, err))
			}
			*r = Pattern(re)
		default:
			return prerrors.NewRuleError(prerrors.ErrInvalidRule,
				fmt.Sprintf("line %d: set exactly one of prefix or pattern", node.Line))
		}
		return nil
	default:
		return prerrors.NewRuleError(prerrors.ErrInvalidRule, fmt.Sprintf("line %d: unsupported rule", node.Line))
	}
}

// UnmarshalYAML decodes a rule list, rejecting anything that is not a sequence
func (rs *Rules) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return prerrors.NewRuleError(prerrors.ErrExcludeNotSequence,
			fmt.Sprintf("line %d: got %q", node.Line, node.Value))
	}
	rules := make(Rules, 0, len(node.Content))
	for _, item := range node.Content {
		var rule Rule
		if err := item.Decode(&rule); err != nil {
			return err
		}
		rules = append(rules, rule)
	}
	*rs = rules
	return nil
}

// Strings returns every rule in string form
func (rs Rules) Strings() []string {
	out := make([]string, len(rs))
	for i, rule := range rs {
		out[i] = rule.String()
	}
	return out
}

// SplitList splits a comma separated list of rules. Commas inside a /expr/
// pattern belong to the pattern; a pattern is closed by the first unescaped
// slash followed by a comma or the end of the value. Blank entries are dropped.
func SplitList(value string) ([]string, error) {
	var out []string
	for i := 0; i < len(value); {
		for i < len(value) && value[i] == ' ' {
			i++
		}
		if i == len(value) {
			break
		}

		end := -1
		if value[i] == '/' {
			end = patternEnd(value, i)
			if end < 0 {
				return nil, prerrors.NewRuleError(prerrors.ErrInvalidRule, "unterminated pattern "+strings.TrimSpace(value[i:]))
			}
		}

		next := strings.IndexByte(value[max(i, end):], ',')
		if next < 0 {
			next = len(value)
		} else {
			next += max(i, end)
		}
		if item := strings.TrimSpace(value[i:next]); item != "" {
			out = append(out, item)
		}
		i = next + 1
	}
	return out, nil
}

// patternEnd returns the index of the slash closing the pattern opened at start, or -1
func patternEnd(value string, start int) int {
	for j := start + 1; j < len(value); j++ {
		switch value[j] {
		case '\\':
			j++
		case '/':
			rest := strings.TrimLeft(value[j+1:], " ")
			if rest == "" || rest[0] == ',' {
				return j
			}
		}
	}
	return -1
}
