// internal/routing/rules/classifier.go
//
// Deterministic keyword classifier. Runs before any model call: a
// high-confidence regex hit routes the message directly, anything else
// is handed to the fallback classifier.
package rules

import (
	"regexp"
	"strings"

	"guest-router/internal/models"
)

// Result is the outcome of a rule classification. Matched distinguishes a
// real hit from the zero value; on a miss the remaining fields are empty.
type Result struct {
	Matched    bool
	Area       models.Area
	Confidence float64
	Reason     string
}

var (
	accentReplacer = strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
		"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
	)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Normalize lowercases the text, folds accented vowels to their plain form
// (ñ is kept, it is meaningful in Spanish) and collapses runs of whitespace
// to a single space.
func Normalize(text string) string {
	t := accentReplacer.Replace(text)
	t = strings.ToLower(t)
	t = whitespaceRE.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Classify matches the message against the per-area pattern tables. Within
// an area, the first matching pattern wins. A message that matches patterns
// in more than one area is ambiguous and reported as a miss, so the caller
// escalates instead of guessing.
func Classify(text string) Result {
	normalized := Normalize(text)
	if normalized == "" {
		return Result{}
	}

	var (
		hits  int
		first Result
	)
	for _, group := range areaPatterns {
		for _, p := range group.patterns {
			if p.re.MatchString(normalized) {
				hits++
				if hits == 1 {
					first = Result{
						Matched:    true,
						Area:       group.area,
						Confidence: p.confidence,
						Reason:     p.reason,
					}
				}
				break
			}
		}
	}

	if hits != 1 {
		return Result{}
	}
	return first
}
