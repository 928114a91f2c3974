package workflow

import (
	"maps"
	"slices"
	"strings"
)

// Render fills a commit message template. {action} becomes the trigger
// name and {key} the value of vars[key]; unknown placeholders are kept.
func Render(template, action string, vars map[string]string) string {
	pairs := []string{"{action}", action}
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		if key == "action" {
			continue
		}
		pairs = append(pairs, "{"+key+"}", vars[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// ParseVars turns key=value pairs into a variable map. It returns the first
// malformed pair when one has no '=' or an empty key.
func ParseVars(pairs []string) (map[string]string, string, bool) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, pair, false
		}
		vars[key] = value
	}
	return vars, "", true
}
