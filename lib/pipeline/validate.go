package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is a read-only predicate over a fetched payload. Check returns
// nil on pass or a human-readable reason on failure.
type Rule struct {
	Name  string
	Check func(payload any) error
}

// Validate applies rules in order and stops at the first failure.
// The payload is never modified.
func Validate(payload any, rules []Rule) error {
	for _, rule := range rules {
		err := rule.Check(payload)
		if err != nil {
			return &Error{
				Stage: StageValidate,
				Kind:  KindValidationFailure,
				Err:   fmt.Errorf("rule %q: %w", rule.Name, err),
			}
		}
	}
	return nil
}

// lookup resolves a dotted path like "address.city" against nested
// maps parsed from JSON.
func lookup(payload any, path string) (any, bool) {
	current := payload
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// RequireKey passes when the payload object contains the (possibly
// dotted) key.
func RequireKey(key string) Rule {
	return Rule{
		Name: fmt.Sprintf("require key %q", key),
		Check: func(payload any) error {
			_, ok := lookup(payload, key)
			if !ok {
				return fmt.Errorf("missing key %q", key)
			}
			return nil
		},
	}
}

// ForbidKey fails when the payload object contains the key. APIs in
// this domain report errors in-band under sentinel keys, so presence
// of the key means the response is an error document.
func ForbidKey(key string) Rule {
	return Rule{
		Name: fmt.Sprintf("forbid key %q", key),
		Check: func(payload any) error {
			value, ok := lookup(payload, key)
			if ok {
				return fmt.Errorf("unexpected key %q: %v", key, value)
			}
			return nil
		},
	}
}

// MatchPattern passes when the string at the dotted field matches the
// pattern.
func MatchPattern(field string, pattern *regexp.Regexp) Rule {
	return Rule{
		Name: fmt.Sprintf("field %q matches %q", field, pattern),
		Check: func(payload any) error {
			value, ok := lookup(payload, field)
			if !ok {
				return fmt.Errorf("missing field %q", field)
			}
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("field %q is not a string: %v", field, value)
			}
			if !pattern.MatchString(str) {
				return fmt.Errorf("field %q value %q does not match %q", field, str, pattern)
			}
			return nil
		},
	}
}

// InRange passes when the number at the dotted field is within the
// inclusive range [lo, hi].
func InRange(field string, lo, hi float64) Rule {
	return Rule{
		Name: fmt.Sprintf("field %q in [%g, %g]", field, lo, hi),
		Check: func(payload any) error {
			value, ok := lookup(payload, field)
			if !ok {
				return fmt.Errorf("missing field %q", field)
			}
			num, ok := value.(float64)
			if !ok {
				return fmt.Errorf("field %q is not a number: %v", field, value)
			}
			if num < lo || num > hi {
				return fmt.Errorf("field %q value %g outside [%g, %g]", field, num, lo, hi)
			}
			return nil
		},
	}
}
