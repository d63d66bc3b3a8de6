package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// LoadSQLite reads the listings table once from a SQLite file holding a
// properties table with the same columns as the CSV format. The database
// handle is closed after the load; the core never reads it again.
func LoadSQLite(ctx context.Context, path string) (*Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open properties db: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT id, location, type, price, bedrooms, features, description
		 FROM properties ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var props []model.Property
	for rows.Next() {
		var p model.Property
		var features string
		if err := rows.Scan(&p.ID, &p.Location, &p.Type, &p.Price, &p.Bedrooms, &features, &p.Description); err != nil {
			return nil, fmt.Errorf("scan property row: %w", err)
		}
		for _, f := range strings.Split(features, featureSeparator) {
			if f = strings.TrimSpace(f); f != "" {
				p.Features = append(p.Features, f)
			}
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}

	logx.Info().Str("path", path).Int("rows", len(props)).Msg("properties table loaded")
	return NewTable(props), nil
}

// Load picks the loader by file extension: .db/.sqlite/.sqlite3 use the
// SQLite loader, anything else is treated as CSV.
func Load(ctx context.Context, path string) (*Table, error) {
	switch {
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"), strings.HasSuffix(path, ".sqlite3"):
		return LoadSQLite(ctx, path)
	default:
		return LoadCSV(path)
	}
}
