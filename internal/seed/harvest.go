package seed

import (
	"strings"

	"api-test-ai/internal/schema"
)

// Harvest fills missing parameter examples across the schema with values
// sampled from matching database columns. Parameter names match columns
// case-insensitively with underscores ignored, so ProjectId pairs with
// project_id. Parameters that already carry an example are left alone.
func (s *Store) Harvest(api *schema.APISchema) error {
	tables, err := s.Tables()
	if err != nil {
		return err
	}

	index, err := s.columnIndex(tables)
	if err != nil {
		return err
	}

	filled := 0
	for i := range api.Endpoints {
		ep := &api.Endpoints[i]
		if ep.Body != nil {
			filled += s.fillExamples(ep.Body.Parameters, index)
		}
		filled += s.fillExamples(ep.QueryParams, index)
		filled += s.fillExamples(ep.PathParams, index)
	}

	s.log.Info().Int("examples", filled).Int("tables", len(tables)).Msg("harvested parameter examples")
	return nil
}

// columnRef locates one column for sampling.
type columnRef struct {
	table  string
	column string
}

// columnIndex maps folded column names to their first occurrence. The
// first table wins on collisions, matching the sorted table listing.
func (s *Store) columnIndex(tables []string) (map[string]columnRef, error) {
	index := make(map[string]columnRef)
	for _, table := range tables {
		columns, err := s.Columns(table)
		if err != nil {
			s.log.Warn().Err(err).Str("table", table).Msg("skipping table")
			continue
		}
		for _, col := range columns {
			key := foldName(col.Name)
			if _, ok := index[key]; !ok {
				index[key] = columnRef{table: table, column: col.Name}
			}
		}
	}
	return index, nil
}

func (s *Store) fillExamples(params []schema.Parameter, index map[string]columnRef) int {
	filled := 0
	for i := range params {
		p := &params[i]
		if p.Example != nil || schema.IsReservedEnv(p.Name) {
			continue
		}
		ref, ok := index[foldName(p.Name)]
		if !ok {
			continue
		}
		value, err := s.Sample(ref.table, ref.column)
		if err != nil {
			s.log.Debug().Err(err).Str("column", ref.column).Msg("sample failed")
			continue
		}
		p.Example = value
		filled++
	}
	return filled
}

// foldName lowercases and strips underscores so snake_case columns match
// CamelCase parameters.
func foldName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}
