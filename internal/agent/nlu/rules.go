package nlu

// Field identifies where a matched rule lands: a persistent entity field
// or a per-turn signal.
type Field int

const (
	FieldLocation Field = iota
	FieldPropertyType
	FieldFeature
	FieldObjection
	FieldAcceptance
	FieldConfirmation
)

// Rule maps a surface pattern to an entity field or a signal. Entity
// patterns match as substrings of the normalized turn text (prepositions
// attach to the noun in Arabic, "بالمعادي"); signal patterns match on
// whole-word boundaries so a vocabulary word buried inside a longer word
// never fires ("حلوان" contains "حلو", "القاهره" contains "اه"). Rules
// are evaluated in slice order and for single-valued fields the first
// match wins. New dialect variants are added as rules, never as
// extractor logic.
type Rule struct {
	Pattern string
	Field   Field
	Value   string // canonical value stored when the pattern matches
}

// knownLocations are Cairo-area cities and districts the agent recognizes.
// The canonical spelling is kept for display; matching happens on the
// normalized form.
var knownLocations = []string{
	"القاهرة", "الاسكندرية", "الجيزة", "المعادي", "مدينة نصر", "6 أكتوبر",
	"التجمع", "الشروق", "العبور", "الرحاب", "مدينتي", "الشيخ زايد",
	"المهندسين", "الدقي", "الزمالك", "وسط البلد", "مصر الجديدة", "حلوان",
}

// propertyTypes lists each canonical type with its accepted spellings,
// in evaluation order.
var propertyTypes = []struct {
	canonical string
	spellings []string
}{
	{"شقة", []string{"شقة", "شقه", "apartment"}},
	{"فيلا", []string{"فيلا", "فيلات", "villa"}},
	{"دوبلكس", []string{"دوبلكس", "duplex"}},
	{"ستوديو", []string{"ستوديو", "استوديو", "studio"}},
	{"محل", []string{"محل", "محلات", "shop"}},
	{"مكتب", []string{"مكتب", "مكاتب", "office"}},
}

var knownFeatures = []string{
	"حديقة", "مسبح", "تكييف", "مفروش", "مطبخ", "شرفة", "موقف", "جراج",
	"مصعد", "أمن",
}

var objectionWords = []string{
	"لكن", "بس", "مشكلة", "قلق", "لا أحب", "غالي", "غاليه", "بعيد",
	"صغير", "مش مناسب", "مش عاجبني", "ما عجبنيش", "مرتفع",
}

var acceptanceWords = []string{
	"أعجبني", "عاجبني", "مهتم", "رائع", "ممتاز", "حلو", "اشتري", "أقبل",
	"حاضر", "اوكي", "ماشي", "موافق", "أوافق",
}

var confirmationWords = []string{
	"نعم", "صحيح", "صح", "مظبوط", "تمام", "أيوه", "ايوه", "اه", "أكيد",
	"طبعا",
}

// DefaultRules builds the declarative matcher table from the dialect
// vocabularies above. All patterns are pre-normalized so the extractor
// can compare against normalized turn text directly.
func DefaultRules() []Rule {
	var rules []Rule
	for _, loc := range knownLocations {
		rules = append(rules, Rule{Pattern: Normalize(loc), Field: FieldLocation, Value: loc})
	}
	for _, pt := range propertyTypes {
		for _, s := range pt.spellings {
			rules = append(rules, Rule{Pattern: Normalize(s), Field: FieldPropertyType, Value: pt.canonical})
		}
	}
	for _, f := range knownFeatures {
		rules = append(rules, Rule{Pattern: Normalize(f), Field: FieldFeature, Value: f})
	}
	for _, w := range objectionWords {
		rules = append(rules, Rule{Pattern: Normalize(w), Field: FieldObjection})
	}
	for _, w := range acceptanceWords {
		rules = append(rules, Rule{Pattern: Normalize(w), Field: FieldAcceptance})
	}
	for _, w := range confirmationWords {
		rules = append(rules, Rule{Pattern: Normalize(w), Field: FieldConfirmation})
	}
	return rules
}
