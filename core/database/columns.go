package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// TableColumns returns the lower-cased column names of a table.
// A missing table yields no columns and no error.
func TableColumns(db *gorm.DB, table string) ([]string, error) {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		if !db.Migrator().HasTable(table) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}
	cols := make([]string, 0, len(types))
	for _, ct := range types {
		cols = append(cols, strings.ToLower(ct.Name()))
	}
	return cols, nil
}

// MissingColumns lists the required columns absent from table, in the order given.
func MissingColumns(db *gorm.DB, table string, required []string) ([]string, error) {
	cols, err := TableColumns(db, table)
	if err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		have[c] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[strings.ToLower(r)]; !ok {
			missing = append(missing, r)
		}
	}
	return missing, nil
}
