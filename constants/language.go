package constants

import (
	"fmt"
	"strings"
)

// Language selects the DEEPREAD Extract endpoint and the process types it accepts.
type Language string

const (
	English  Language = "en"
	Japanese Language = "ja"
)

var allLanguages = []Language{English, Japanese}

// DefaultLanguage is used when neither an override nor a filename suffix names one.
const DefaultLanguage = English

// Languages returns the supported languages in resolution order.
func Languages() []Language {
	out := make([]Language, len(allLanguages))
	copy(out, allLanguages)
	return out
}

// ParseLanguage accepts "en"/"ja" in any case. Empty input yields "" and no error.
func ParseLanguage(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, l := range allLanguages {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q (want one of %s)", s, joinLanguages())
}

func (l Language) Valid() bool {
	for _, x := range allLanguages {
		if x == l {
			return true
		}
	}
	return false
}

func (l Language) String() string { return string(l) }

func joinLanguages() string {
	parts := make([]string, len(allLanguages))
	for i, l := range allLanguages {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}
