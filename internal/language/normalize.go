// Package language detects the language of user queries and maps language
// identifiers between the forms used by the pipeline's collaborators.
package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Canonical short codes for the supported languages.
const (
	English = "en"
	Hindi   = "hi"
	Kannada = "kn"
	Odia    = "or"
)

// canonical maps names, locale tags and variants to canonical codes.
var canonical = map[string]string{
	"en":      English,
	"hi":      Hindi,
	"kn":      Kannada,
	"or":      Odia,
	"english": English,
	"hindi":   Hindi,
	"kannada": Kannada,
	"oriya":   Odia,
	"odia":    Odia,
	"en-us":   English,
	"hi-in":   Hindi,
	"kn-in":   Kannada,
	"or-in":   Odia,
}

// localeTags holds the region-qualified tag used by speech and translation backends.
var localeTags = map[string]language.Tag{
	English: language.MustParse("en-US"),
	Hindi:   language.MustParse("hi-IN"),
	Kannada: language.MustParse("kn-IN"),
	Odia:    language.MustParse("or-IN"),
}

// Normalize maps an arbitrary language identifier to its canonical short code.
// Names and common locale tags are looked up directly; other well-formed
// BCP 47 tags ("hi_IN", "kn-Knda-IN", "hin") reduce to their base language.
// Anything else falls back to its lowercase first two characters.
func Normalize(code string) string {
	lower := strings.ToLower(strings.TrimSpace(code))
	if c, ok := canonical[lower]; ok {
		return c
	}
	if tag, err := language.Parse(lower); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	r := []rune(lower)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// LocaleTag returns the locale-tagged form of a code (e.g. "hi" -> "hi-IN").
// Unrecognized codes map to the English tag.
func LocaleTag(code string) string {
	if tag, ok := localeTags[Normalize(code)]; ok {
		return tag.String()
	}
	return localeTags[English].String()
}

// IsSupported reports whether code is one of the canonical supported codes.
func IsSupported(code string) bool {
	_, ok := localeTags[code]
	return ok
}
