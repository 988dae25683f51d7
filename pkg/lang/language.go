package lang

import "strings"

// Language is the language the commit description is written in
type Language string

const (
	English            Language = "en"
	ChineseSimplified  Language = "zh"
	ChineseTraditional Language = "zh-tw"
	Japanese           Language = "ja"
	Korean             Language = "ko"
	Spanish            Language = "es"
	German             Language = "de"
	French             Language = "fr"
)

var displayNames = map[Language]string{
	English:            "English",
	ChineseSimplified:  "Simplified Chinese",
	ChineseTraditional: "Traditional Chinese",
	Japanese:           "Japanese",
	Korean:             "Korean",
	Spanish:            "Spanish",
	German:             "German",
	French:             "French",
}

// String returns the string representation of the language
func (l Language) String() string {
	return string(l)
}

// IsValid checks if the language is supported
func (l Language) IsValid() bool {
	_, ok := displayNames[l]
	return ok
}

// DisplayName returns the English name of the language, used in prompts
func (l Language) DisplayName() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return string(l)
}

// DefaultLanguage returns the default language
func DefaultLanguage() Language {
	return English
}

// ParseLanguage parses a language code, case-insensitively.
// Unknown codes fall back to the default language.
func ParseLanguage(s string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if l.IsValid() {
		return l
	}
	return DefaultLanguage()
}
