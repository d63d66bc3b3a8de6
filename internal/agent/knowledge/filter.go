package knowledge

import (
	"sort"
	"strings"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/nlu"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// Filter narrows the listings table by the current entity constraints.
// Matching is re-evaluated from the full table on every call, so results
// always reflect the latest entity set.
type Filter struct {
	table *Table
	cfg   model.FilterConfig
}

// NewFilter builds a filter over an immutable table.
func NewFilter(table *Table, cfg model.FilterConfig) *Filter {
	return &Filter{table: table, cfg: cfg}
}

// constraints is one rung of the relaxation ladder; zero values disable
// the corresponding predicate.
type constraints struct {
	location  string
	propType  string
	budget    int64
	tolerance float64
}

// Match returns rows satisfying the entity constraints ordered by ascending
// price (ties keep insertion order). On zero matches the predicates relax
// in a fixed order: drop type, widen budget tolerance, drop location, drop
// budget. An empty result therefore only occurs for an empty table; the
// caller treats it as the signal to fall back to a generic reply.
func (f *Filter) Match(ents model.EntitySet) []model.Property {
	ladder := []constraints{
		{location: ents.Location, propType: ents.PropertyType, budget: ents.Budget, tolerance: f.cfg.BudgetTolerance},
		{location: ents.Location, budget: ents.Budget, tolerance: f.cfg.BudgetTolerance},
		{location: ents.Location, budget: ents.Budget, tolerance: f.cfg.RelaxedBudgetTolerance},
		{budget: ents.Budget, tolerance: f.cfg.RelaxedBudgetTolerance},
		{},
	}

	var prev *constraints
	for i, c := range ladder {
		if prev != nil && c == *prev {
			continue // relaxing an unset predicate changes nothing
		}
		rows := f.apply(c)
		if len(rows) > 0 {
			if i > 0 {
				logx.Debug().Int("stage", i).Int("rows", len(rows)).Msg("filter relaxed")
			}
			sort.SliceStable(rows, func(a, b int) bool { return rows[a].Price < rows[b].Price })
			return rows
		}
		cc := c
		prev = &cc
	}
	return nil
}

func (f *Filter) apply(c constraints) []model.Property {
	var out []model.Property
	normLoc := nlu.Normalize(c.location)
	for _, row := range f.table.rows {
		if c.location != "" && !locationMatches(row.Location, normLoc) {
			continue
		}
		if c.propType != "" && row.Type != c.propType {
			continue
		}
		if c.budget > 0 {
			ceiling := float64(c.budget) * (1 + c.tolerance)
			if float64(row.Price) > ceiling {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

// locationMatches accepts an exact or prefix match on the normalized row
// location, so "مدينة نصر" still matches a row stored with a district
// suffix.
func locationMatches(rowLocation, normQuery string) bool {
	rl := nlu.Normalize(rowLocation)
	return rl == normQuery || strings.HasPrefix(rl, normQuery)
}
