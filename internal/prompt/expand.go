// Package prompt expands ${var} placeholders in prompt templates.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// bracePattern matches ${varname}.
var bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Expand substitutes ${var} placeholders in s from vars. Unknown
// variables are kept as-is so a malformed template degrades visibly
// instead of silently producing empty prompt sections.
func Expand(s string, vars map[string]any) string {
	if s == "" {
		return ""
	}
	return bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		return match
	})
}

// MustExpand expands s and panics when any placeholder is undefined.
// Used for templates whose variables are known at compile time.
func MustExpand(s string, vars map[string]any) string {
	var missing []string
	result := bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		missing = append(missing, name)
		return match
	})
	if len(missing) > 0 {
		panic(fmt.Sprintf("prompt: undefined variables: %s", strings.Join(missing, ", ")))
	}
	return result
}
