package mkv

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageDisplayName resolves an ISO 639 code from a track header to a
// human-readable English name. Unknown and undetermined codes map to
// "Undetermined".
func LanguageDisplayName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == "und" {
		return "Undetermined"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "Undetermined"
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return "Undetermined"
	}
	return name
}
