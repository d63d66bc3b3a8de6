package nlu

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

var (
	// budget mentions like "٢٠٠ الف", "2 مليون", "900000 جنيه", "1.2m".
	budgetRe = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(جنيه|الف|مليون|k|m)`)

	// bedroom counts like "3 غرف".
	bedroomsRe = regexp.MustCompile(`(\d+)\s*غرف`)

	// phone candidates: a digit run with optional separators, 10-15 digits.
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-]{8,16}\d`)

	// "my name is X" on normalized text; only the explicit اسمي form is
	// trusted, since "انا <word>" misfires on ordinary replies.
	nameRe = regexp.MustCompile(`اسمي\s+([\p{Arabic}]+)`)

	nonDigitRe = regexp.MustCompile(`\D`)
)

// Extractor scans user turns against a declarative rule table. It is pure:
// extraction never fails, and unmatched text simply leaves fields unset
// for that turn.
type Extractor struct {
	rules []Rule
}

// NewExtractor builds an extractor over the given rule table; nil falls
// back to the default dialect vocabulary.
func NewExtractor(rules []Rule) *Extractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract returns prior with any newly extracted fields merged on top,
// plus the per-turn signals. prior is never mutated; a field already set
// is only overwritten when this turn extracts a new value for it.
func (e *Extractor) Extract(text string, prior model.EntitySet) (model.EntitySet, model.Signals) {
	norm := Normalize(text)

	var found model.EntitySet
	var sig model.Signals

	for _, r := range e.rules {
		if r.Pattern == "" || !ruleMatches(norm, r) {
			continue
		}
		switch r.Field {
		case FieldLocation:
			if found.Location == "" {
				found.Location = r.Value
			}
		case FieldPropertyType:
			if found.PropertyType == "" {
				found.PropertyType = r.Value
			}
		case FieldFeature:
			found.Features = append(found.Features, r.Value)
		case FieldObjection:
			sig.Objection = true
		case FieldAcceptance:
			sig.Acceptance = true
		case FieldConfirmation:
			sig.Confirmation = true
		}
	}

	if b, ok := parseBudget(norm); ok {
		found.Budget = b
	}
	if m := bedroomsRe.FindStringSubmatch(norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			found.Bedrooms = n
		}
	}
	if name := extractName(norm); name != "" {
		found.Name = name
	}
	if phone := extractPhone(text); phone != "" {
		found.Phone = phone
	}

	merged := prior.Merge(found)
	logx.Debug().
		Str("component", "extractor").
		Bool("objection", sig.Objection).
		Bool("acceptance", sig.Acceptance).
		Bool("confirmation", sig.Confirmation).
		Msg("turn extracted")
	return merged, sig
}

// ruleMatches applies the per-field matching mode: entity vocabulary
// matches as a substring, signal vocabulary only as whole words. A
// district mention must never read as a signal ("حلوان" would otherwise
// fire the acceptance word "حلو").
func ruleMatches(norm string, r Rule) bool {
	switch r.Field {
	case FieldObjection, FieldAcceptance, FieldConfirmation:
		return containsWord(norm, r.Pattern)
	default:
		return strings.Contains(norm, r.Pattern)
	}
}

// containsWord reports whether pattern occurs in norm on word
// boundaries. Normalized text is single-spaced with punctuation folded
// away, so padding both strings with spaces covers the start, the end
// and multi-word patterns alike.
func containsWord(norm, pattern string) bool {
	return strings.Contains(" "+norm+" ", " "+pattern+" ")
}

// parseBudget converts a budget mention to EGP.
func parseBudget(norm string) (int64, bool) {
	m := budgetRe.FindStringSubmatch(norm)
	if m == nil {
		return 0, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	switch m[2] {
	case "الف", "k":
		amount *= 1_000
	case "مليون", "m":
		amount *= 1_000_000
	}
	return int64(amount), true
}

func extractName(norm string) string {
	m := nameRe.FindStringSubmatch(norm)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if len([]rune(name)) < 3 {
		return ""
	}
	return name
}

func extractPhone(text string) string {
	for _, cand := range phoneRe.FindAllString(text, -1) {
		digits := nonDigitRe.ReplaceAllString(cand, "")
		if len(digits) >= 10 && len(digits) <= 15 {
			if strings.HasPrefix(cand, "+") {
				return "+" + digits
			}
			return digits
		}
	}
	return ""
}
