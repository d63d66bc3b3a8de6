package knowledge

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// featureSeparator is the Arabic comma used inside the features column.
const featureSeparator = "،"

// LoadCSV reads the listings table from a UTF-8 CSV file with a header of
// id,location,type,price,bedrooms,features,description. Malformed rows are
// skipped with a warning rather than failing the load.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open properties csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"location", "type", "price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("properties csv missing column %q", required)
		}
	}

	var rows []model.Property
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logx.Warn().Err(err).Int("line", line).Msg("skipping malformed csv row")
			continue
		}
		row, ok := parseRow(rec, col, line)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	logx.Info().Str("path", path).Int("rows", len(rows)).Msg("properties table loaded")
	return NewTable(rows), nil
}

func parseRow(rec []string, col map[string]int, line int) (model.Property, bool) {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	price, err := strconv.ParseInt(strings.ReplaceAll(get("price"), ",", ""), 10, 64)
	if err != nil || price <= 0 {
		logx.Warn().Int("line", line).Str("price", get("price")).Msg("skipping row with invalid price")
		return model.Property{}, false
	}

	bedrooms, _ := strconv.Atoi(get("bedrooms"))

	var features []string
	if raw := get("features"); raw != "" {
		for _, f := range strings.Split(raw, featureSeparator) {
			if f = strings.TrimSpace(f); f != "" {
				features = append(features, f)
			}
		}
	}

	return model.Property{
		ID:          get("id"),
		Location:    get("location"),
		Type:        get("type"),
		Price:       price,
		Bedrooms:    bedrooms,
		Features:    features,
		Description: get("description"),
	}, true
}
