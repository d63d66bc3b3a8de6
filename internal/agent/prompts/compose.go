package prompts

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/rules"
)

//go:embed template/*.txt
var templateFS embed.FS

var phaseTemplates = map[model.Phase]string{
	model.PhaseDiscovery:   "template/discovery.txt",
	model.PhaseSummary:     "template/summary.txt",
	model.PhaseSuggestion:  "template/suggestion.txt",
	model.PhasePersuasion:  "template/persuasion.txt",
	model.PhaseAlternative: "template/alternative.txt",
	model.PhaseUrgency:     "template/urgency.txt",
	model.PhaseClosing:     "template/closing.txt",
}

// Composer assembles the per-turn message list for the generator: one
// phase-specific system prompt (persona + phase instruction + retrieved
// context + threshold-rule advice) followed by a bounded window of the
// most recent turns. The composer has no knowledge of how the generator
// uses its output.
type Composer struct {
	cfg        model.PromptConfig
	topK       int
	historyMax int
	rules      *rules.Ruleset
}

// NewComposer builds a composer; rs may be nil when no rules file is
// configured.
func NewComposer(cfg model.PromptConfig, filterCfg model.FilterConfig, convCfg model.ConversationConfig, rs *rules.Ruleset) *Composer {
	if rs == nil {
		rs = &rules.Ruleset{}
	}
	topK := filterCfg.TopK
	if topK <= 0 {
		topK = 3
	}
	historyMax := convCfg.History.MaxTurns
	if historyMax <= 0 {
		historyMax = 10
	}
	return &Composer{cfg: cfg, topK: topK, historyMax: historyMax, rules: rs}
}

// Compose renders the system prompt for the turn's phase and appends the
// history window. The history already contains the current user turn.
func (c *Composer) Compose(ctx context.Context, turn *model.TurnContext) ([]*schema.Message, error) {
	sys, err := c.renderSystem(ctx, turn)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{schema.SystemMessage(sys)}
	messages = append(messages, trimTail(turn.History, c.historyMax)...)
	return messages, nil
}

// renderSystem renders persona + phase template via the Eino prompt
// component (enables prompt callbacks), interpolating entity fields, the
// top matching rows and any threshold-rule advice.
func (c *Composer) renderSystem(ctx context.Context, turn *model.TurnContext) (string, error) {
	phase := turn.Session.Phase
	path, ok := phaseTemplates[phase]
	if !ok {
		return "", fmt.Errorf("no template for phase %s", phase)
	}
	body, err := templateFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read phase template: %w", err)
	}
	persona, err := templateFS.ReadFile("template/persona.txt")
	if err != nil {
		return "", fmt.Errorf("read persona template: %w", err)
	}

	ents := turn.Session.Entities
	var firstRow *model.Property
	if len(turn.Rows) > 0 {
		firstRow = &turn.Rows[0]
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(string(persona)+"\n"+string(body)),
	)
	vars := map[string]any{
		"AgencyName": c.cfg.AgencyName,
		"Missing":    missingFields(ents),
		"Summary":    summaryLines(ents),
		"Properties": propertyLines(turn.Rows, c.topK),
		"Advice":     strings.Join(c.rules.Advice(ents, firstRow), "\n"),
		"Name":       ents.Name,
		"HasContact": ents.HasContact(),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", phase, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("render %s prompt: empty result", phase)
	}
	return msgs[0].Content, nil
}

// missingFields names the discovery fields still unknown, in asking order.
func missingFields(ents model.EntitySet) string {
	var missing []string
	if ents.Location == "" {
		missing = append(missing, "المكان")
	}
	if ents.Budget <= 0 {
		missing = append(missing, "الميزانية")
	}
	if ents.PropertyType == "" {
		missing = append(missing, "نوع العقار")
	}
	return strings.Join(missing, "، ")
}

func summaryLines(ents model.EntitySet) string {
	var lines []string
	if ents.PropertyType != "" {
		lines = append(lines, "النوع: "+ents.PropertyType)
	}
	if ents.Location != "" {
		lines = append(lines, "الموقع: "+ents.Location)
	}
	if ents.Budget > 0 {
		lines = append(lines, "الميزانية: حوالي "+FormatEGP(ents.Budget))
	}
	if ents.Bedrooms > 0 {
		lines = append(lines, fmt.Sprintf("عدد الغرف: %d", ents.Bedrooms))
	}
	if len(ents.Features) > 0 {
		lines = append(lines, "مطلوب: "+strings.Join(ents.Features, "، "))
	}
	return strings.Join(lines, "\n")
}

// propertyLines formats the top rows as context lines for the generator.
func propertyLines(rows []model.Property, topK int) string {
	if len(rows) > topK {
		rows = rows[:topK]
	}
	var lines []string
	for _, p := range rows {
		line := fmt.Sprintf("- %s في %s بـ %s", p.Type, p.Location, FormatEGP(p.Price))
		if len(p.Features) > 0 {
			line += " (" + strings.Join(p.Features, "، ") + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatEGP renders an EGP amount with thousands separators.
func FormatEGP(amount int64) string {
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String() + " جنيه"
}

// trimTail returns a copy of the most recent max messages.
func trimTail(messages []*schema.Message, max int) []*schema.Message {
	if len(messages) > max {
		messages = messages[len(messages)-max:]
	}
	result := make([]*schema.Message, len(messages))
	copy(result, messages)
	return result
}
