package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/nlu"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// Ruleset holds the declarative threshold rules the composer consults when
// building summary, persuasion and urgency content. It is static
// configuration loaded once at startup, never logic the core computes.
type Ruleset struct {
	BudgetAdvice    []BudgetRule  `yaml:"budget_advice"`
	FeaturePriority []FeatureRule `yaml:"feature_priority"`
}

// BudgetRule maps a budget band to an advice phrase. MaxBudget of zero
// means unbounded.
type BudgetRule struct {
	MinBudget int64  `yaml:"min_budget"`
	MaxBudget int64  `yaml:"max_budget"`
	Response  string `yaml:"response"`
}

// FeatureRule maps a property feature to a selling phrase.
type FeatureRule struct {
	Feature  string `yaml:"feature"`
	Response string `yaml:"response"`
}

// Load reads the ruleset from a YAML file. A missing file yields an empty
// ruleset with a warning: advice is optional flavor, never required.
func Load(path string) (*Ruleset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logx.Warn().Str("path", path).Msg("rules file not found, advice disabled")
			return &Ruleset{}, nil
		}
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	logx.Info().
		Str("path", path).
		Int("budget_rules", len(rs.BudgetAdvice)).
		Int("feature_rules", len(rs.FeaturePriority)).
		Msg("rules loaded")
	return &rs, nil
}

// Advice returns the phrases whose conditions match the current entity set
// and, when given, the property being discussed. Order follows the rule
// file.
func (r *Ruleset) Advice(ents model.EntitySet, prop *model.Property) []string {
	var out []string

	if ents.Budget > 0 {
		for _, b := range r.BudgetAdvice {
			if ents.Budget < b.MinBudget {
				continue
			}
			if b.MaxBudget > 0 && ents.Budget >= b.MaxBudget {
				continue
			}
			out = append(out, b.Response)
		}
	}

	features := ents.Features
	if prop != nil && len(prop.Features) > 0 {
		features = prop.Features
	}
	for _, f := range features {
		nf := nlu.Normalize(f)
		for _, fr := range r.FeaturePriority {
			if strings.Contains(nf, nlu.Normalize(fr.Feature)) {
				out = append(out, fr.Response)
			}
		}
	}

	return out
}
