package users

import (
	"errors"

	"golang.org/x/text/language"
)

var (
	// ErrUnknownRole indicates a role outside the closed enum.
	ErrUnknownRole = errors.New("users: unknown role")
	// ErrUsernameTaken indicates a duplicate username.
	ErrUsernameTaken = errors.New("users: username already taken")
)

// supportedLanguages are the portal UI languages, English first so it
// wins as the fallback.
var supportedLanguages = []language.Tag{
	language.English,
	language.Arabic,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// NormalizeLanguage maps a user-supplied language preference onto a
// supported base tag. Anything unrecognized falls back to English.
func NormalizeLanguage(pref string) string {
	if pref == "" {
		return "en"
	}
	tag, err := language.Parse(pref)
	if err != nil {
		return "en"
	}
	matched, _, _ := languageMatcher.Match(tag)
	base, _ := matched.Base()
	return base.String()
}
