package seed

import (
	"fmt"
)

// Column is one introspected table column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

// Tables lists the base tables visible to the connection.
func (s *Store) Tables() ([]string, error) {
	var query string
	switch s.driver {
	case "postgres":
		query = `SELECT LOWER(table_name) FROM information_schema.tables
			WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`
	case "mysql":
		query = `SELECT LOWER(table_name) FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'`
	case "sqlserver":
		query = `SELECT LOWER(table_name) FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'`
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", s.driver)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Columns introspects one table.
func (s *Store) Columns(table string) ([]Column, error) {
	query := fmt.Sprintf(`SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE LOWER(table_name) = LOWER(%s)
		ORDER BY column_name`, s.placeholder(1))

	rows, err := s.db.Query(query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// Sample pulls one non-null value from a column, randomly so repeated
// harvests do not always pin the same row.
func (s *Store) Sample(table, column string) (interface{}, error) {
	var query string
	switch s.driver {
	case "mysql":
		query = fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NOT NULL ORDER BY RAND() LIMIT 1",
			column, table, column)
	case "sqlserver":
		query = fmt.Sprintf("SELECT TOP 1 %s FROM %s WHERE %s IS NOT NULL ORDER BY NEWID()",
			column, table, column)
	default:
		query = fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NOT NULL ORDER BY RANDOM() LIMIT 1",
			column, table, column)
	}

	var value interface{}
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return nil, err
	}
	return normalizeDBValue(value), nil
}

// normalizeDBValue converts driver scan types into JSON-friendly values.
// Byte slices come back for text columns on several drivers.
func normalizeDBValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return v
	}
}
