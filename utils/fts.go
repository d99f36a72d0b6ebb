package utils

import (
	"strings"
	"unicode/utf8"
)

// NgramTokenSize matches MySQL's default ngram_token_size.
const NgramTokenSize = 2

// FtsNormalize lowercases and collapses whitespace before a name is
// written to a full-text shadow row.
func FtsNormalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// FtsPhrase quotes query for MATCH ... AGAINST in boolean mode so that
// operator characters are matched literally.
func FtsPhrase(query string) string {
	q := strings.ReplaceAll(FtsNormalize(query), `"`, " ")
	return `"` + strings.TrimSpace(q) + `"`
}

// FtsLikePattern is used for queries shorter than one ngram token.
func FtsLikePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(FtsNormalize(query)) + "%"
}

func FtsIsShortQuery(query string) bool {
	return utf8.RuneCountInString(strings.ReplaceAll(FtsNormalize(query), " ", "")) < NgramTokenSize
}
