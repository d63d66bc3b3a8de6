package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqarat-core-poc/server/internal/agent/model"
)

const testRulesYAML = `budget_advice:
  - min_budget: 0
    max_budget: 800000
    response: "ميزانية محدودة"
  - min_budget: 800000
    max_budget: 0
    response: "ميزانية مريحة"

feature_priority:
  - feature: "حمام سباحة"
    response: "حمام السباحة بيضيف قيمة"
`

func loadTestRules(t *testing.T) *Ruleset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRulesYAML), 0o644))
	rs, err := Load(path)
	require.NoError(t, err)
	return rs
}

func TestLoad_ParsesBands(t *testing.T) {
	rs := loadTestRules(t)
	require.Len(t, rs.BudgetAdvice, 2)
	assert.Equal(t, int64(800_000), rs.BudgetAdvice[0].MaxBudget)
	require.Len(t, rs.FeaturePriority, 1)
}

func TestLoad_MissingFileYieldsEmptyRuleset(t *testing.T) {
	rs, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, rs.BudgetAdvice)
	assert.Empty(t, rs.Advice(model.EntitySet{Budget: 500_000}, nil))
}

func TestAdvice_BudgetBandSelection(t *testing.T) {
	rs := loadTestRules(t)

	out := rs.Advice(model.EntitySet{Budget: 500_000}, nil)
	assert.Equal(t, []string{"ميزانية محدودة"}, out)

	out = rs.Advice(model.EntitySet{Budget: 2_000_000}, nil)
	assert.Equal(t, []string{"ميزانية مريحة"}, out)

	assert.Empty(t, rs.Advice(model.EntitySet{}, nil))
}

func TestAdvice_PropertyFeaturesPreferred(t *testing.T) {
	rs := loadTestRules(t)

	prop := &model.Property{Features: []string{"حمام سباحة", "جراج"}}
	out := rs.Advice(model.EntitySet{Features: []string{"تكييف"}}, prop)
	assert.Contains(t, out, "حمام السباحة بيضيف قيمة")
}

func TestAdvice_NormalizedFeatureMatch(t *testing.T) {
	rs := loadTestRules(t)

	// Different teh-marbuta spelling still matches after normalization.
	prop := &model.Property{Features: []string{"حمام سباحه كبير"}}
	out := rs.Advice(model.EntitySet{}, prop)
	assert.Len(t, out, 1)
}
