// internal/conversation/identity.go
package conversation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// "mi nombre es Juan Pérez", "soy María, habitación 205". The lazy group
	// stops before common room indicators so the room text is not swallowed
	// into the name.
	namePhraseRE = regexp.MustCompile(
		`(?i)(?:mi nombre es|me llamo|soy)\s+([a-záéíóúñ\s]+?)(?:\s+(?:de la|en la|habitaci[oó]n|room|hab|y\s+|,|\.)|$)`)

	roomLabeledRE    = regexp.MustCompile(`(?i)(?:habitaci[oó]n|room|hab\.?)\s*(\d{2,4})`)
	roomStandaloneRE = regexp.MustCompile(`\b(\d{2,4})\b`)

	yesNoTrailerRE = regexp.MustCompile("[!.,;:()\\[\\]\\-—_*~·•«»\"'`´]+$")
)

var yesTokens = map[string]bool{
	"si": true, "sí": true, "s": true, "y": true, "yes": true,
	"ok": true, "vale": true, "dale": true, "de acuerdo": true,
}

var noTokens = map[string]bool{
	"no": true, "n": true, "nop": true, "nope": true,
	"para nada": true, "no gracias": true, "no, gracias": true,
}

var cancelTokens = map[string]bool{
	"cancelar": true, "cancela": true, "cancelalo": true, "olvidalo": true, "olvídalo": true,
}

// extractName pulls a guest name from free text. It tries the phrase pattern
// first, then falls back to runs of capitalized words.
func extractName(text string) string {
	lower := strings.ToLower(text)

	if m := namePhraseRE.FindStringSubmatch(lower); m != nil {
		name := titleCase(strings.TrimSpace(m[1]))
		if len(name) > 2 {
			return name
		}
	}

	// "Juan Pérez habitación 205": capitalized words are likely the name.
	var capitalized []string
	for _, w := range strings.Fields(text) {
		r := []rune(w)
		if len(r) == 0 || !unicode.IsUpper(r[0]) {
			continue
		}
		switch strings.ToLower(strings.Trim(w, ",.")) {
		case "habitación", "habitacion", "room":
			continue
		}
		capitalized = append(capitalized, strings.Trim(w, ",."))
		if len(capitalized) == 3 {
			break
		}
	}
	if len(capitalized) >= 2 {
		return strings.Join(capitalized, " ")
	}

	return ""
}

// extractRoom pulls a 2-4 digit room number, preferring an explicitly
// labeled one ("habitación 205") over a bare number.
func extractRoom(text string) string {
	if m := roomLabeledRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := roomStandaloneRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func normalizeYesNo(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = yesNoTrailerRE.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

func isYes(text string) bool {
	return yesTokens[normalizeYesNo(text)]
}

func isNo(text string) bool {
	return noTokens[normalizeYesNo(text)]
}

func isCancel(text string) bool {
	return cancelTokens[normalizeYesNo(text)]
}
