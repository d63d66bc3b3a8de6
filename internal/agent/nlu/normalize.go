package nlu

import (
	"regexp"
	"strings"
)

var (
	diacriticsRe = regexp.MustCompile(`[\x{064B}-\x{065F}\x{0670}]`)
	alefRe       = regexp.MustCompile(`[إأآ]`)
	hamzaRe      = regexp.MustCompile(`[ؤئ]`)
	yehRe        = regexp.MustCompile(`ى`)
	punctRe      = regexp.MustCompile(`[؟?!،؛]`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Normalize folds common Arabic spelling variants so keyword matching is
// dialect-tolerant: diacritics are stripped, alef/hamza variants unified,
// teh marbuta folded to heh and final yeh variants unified. Sentence
// punctuation folds to spaces so a trailing "؟" does not glue itself to
// the last word; Latin commas and periods are kept because budgets are
// written with them ("1,500,000", "1.2 مليون"). Latin letters are
// lowercased rather than stripped so mixed-script turns (a budget
// written as "2m", an English property type) still match.
func Normalize(text string) string {
	t := strings.ToLower(text)
	t = diacriticsRe.ReplaceAllString(t, "")
	t = alefRe.ReplaceAllString(t, "ا")
	t = hamzaRe.ReplaceAllString(t, "ء")
	t = strings.ReplaceAll(t, "ة", "ه")
	t = yehRe.ReplaceAllString(t, "ي")
	t = punctRe.ReplaceAllString(t, " ")
	t = spaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
