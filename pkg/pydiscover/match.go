package pydiscover

import "github.com/specvital/rtest-go/internal/pattern"

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if pattern.Matches(p, name) {
			return true
		}
	}
	return false
}
