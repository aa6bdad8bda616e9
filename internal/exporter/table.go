package exporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// setSeparator joins multi-valued fields in tabular output.
const setSeparator = "; "

// Preferred column orderings per record type. The final column set is the
// union of these and every key observed in the data; observed extras sort
// alphabetically after the preferred block.
var (
	mouseColumns = []string{
		"name", "sex", "genotype", "birthDate", "cageId", "statuses",
		"state", "starred", "fatherId", "motherId", "spouseIds",
		"childrenIds", "notes", "deathDate", "causeOfDeath", "id",
	}
	cageColumns   = []string{"name", "row", "id"}
	mergedColumns = append([]string{"type"}, mouseColumns...)
)

// buildTable renders rows into a header-first table using the preferred
// column ordering for the record type.
func buildTable(rows []map[string]any, preferred []string) [][]string {
	columns := columnSet(rows, preferred)
	table := make([][]string, 0, len(rows)+1)
	table = append(table, columns)
	for _, row := range rows {
		line := make([]string, len(columns))
		for i, col := range columns {
			line[i] = flatten(row[col])
		}
		table = append(table, line)
	}
	return table
}

func columnSet(rows []map[string]any, preferred []string) []string {
	seen := make(map[string]bool, len(preferred))
	columns := make([]string, 0, len(preferred))
	for _, col := range preferred {
		seen[col] = true
		columns = append(columns, col)
	}
	var extras []string
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				extras = append(extras, key)
			}
		}
	}
	sort.Strings(extras)
	return append(columns, extras...)
}

// flatten renders a field value as a single cell: sets join with a
// separator, nested structures serialize to JSON text, scalars print
// directly.
func flatten(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case []any:
		parts := make([]string, 0, len(v))
		allScalar := true
		for _, item := range v {
			if _, ok := item.(string); !ok {
				allScalar = false
				break
			}
		}
		if allScalar {
			for _, item := range v {
				parts = append(parts, item.(string))
			}
			return strings.Join(parts, setSeparator)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
