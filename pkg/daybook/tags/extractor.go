// Package tags derives tag names from entry content and keeps
// entry-tag associations converged with what the content says.
package tags

import (
	"iter"
	"regexp"
	"strings"
)

const (
	escapedSigil = `\#`
	// NUL cannot appear in entry text, so it is a safe mask for
	// escaped sigils during the scan.
	sigilMask = "\x00"
)

var tagPattern = regexp.MustCompile(`#([\w-]+)`)

// Extract returns the candidate tag names found in content as a
// restartable sequence. Escaped sigils are masked first so `\#done`
// is not mistaken for a tag. Names are deduplicated case-sensitively;
// callers fold case downstream. Order is not significant.
func Extract(content string) iter.Seq[string] {
	return func(yield func(string) bool) {
		masked := strings.ReplaceAll(content, escapedSigil, sigilMask)
		seen := make(map[string]struct{})
		for _, m := range tagPattern.FindAllStringSubmatch(masked, -1) {
			name := m[1]
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			if !yield(name) {
				return
			}
		}
	}
}

// Names collects Extract's sequence into a slice.
func Names(content string) []string {
	var out []string
	for name := range Extract(content) {
		out = append(out, name)
	}
	return out
}

// Display renders content for presentation: escaped sigils become
// literal sigils again.
func Display(content string) string {
	return strings.ReplaceAll(content, escapedSigil, "#")
}
