package prompts

import (
	"github.com/aqarat-core-poc/server/internal/agent/model"
)

// WelcomeMessage opens every fresh conversation.
const WelcomeMessage = "اهلا بيك! انا وكيلك العقاري. تحب أبدأ ازاي؟"

// fallbackReplies are the deterministic canned replies served when the
// generator is unavailable. One per phase, in the agent's dialect.
var fallbackReplies = map[model.Phase]string{
	model.PhaseDiscovery:   "ممكن تقولي المكان والميزانية ونوع العقار اللي بتدور عليه؟ علشان أقدر أساعدك أكتر.",
	model.PhaseSummary:     "حابب تأكدلي انت بتدور على إيه بالظبط؟",
	model.PhaseSuggestion:  "دي شوية عقارات ممكن تناسب اللي بتدور عليه، شوفهم وقولي رأيك.",
	model.PhasePersuasion:  "العقار ده فيه مميزات كتير زي الموقع والمساحة. تحب أقولك أكتر ليه ممكن يكون اختيار ممتاز؟",
	model.PhaseAlternative: "ممكن تبص على اختيارات تانية مشابهة لو العقار ده مش عاجبك تماماً.",
	model.PhaseUrgency:     "العقارات دي بتروح بسرعة، لو مهتم أنصح نحجز معاينة أو تواصل فوري.",
	model.PhaseClosing:     "تمام، ابعتلي اسمك ورقم تليفونك وهنكلمك في أقرب وقت.",
}

// FallbackReply returns the canned reply for the phase; unknown phases get
// a generic opener so the session never goes silent.
func FallbackReply(phase model.Phase) string {
	if r, ok := fallbackReplies[phase]; ok {
		return r
	}
	return "أنا موجود علشان أساعدك، تحب تبدأ بإيه؟"
}
