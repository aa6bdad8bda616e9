// Package exporter renders canonical colony state into external file
// formats. Identifier-valued fields are substituted with display names
// wherever the colony knows one; everything else passes through.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"mousecolony/pkg/colony"
)

// Fixed output filenames. Callers choose the directory; names are not
// configurable.
const (
	JSONFilename      = "mice_data.json"
	XLSXFilename      = "mice_data.xlsx"
	MergedCSVFilename = "mice_data.csv"
	MiceCSVFilename   = "mice.csv"
	CagesCSVFilename  = "cages.csv"
	MiceSheetName     = "Mice"
	CagesSheetName    = "Cages"
	DeadMiceSheetName = "DeadMice"
)

// Exporter maps a document snapshot to files. It is stateless beyond the
// snapshot it was built from.
type Exporter struct {
	doc   colony.Document
	names map[string]string
}

// New builds an exporter over a snapshot, preparing the id-to-name table
// from every cage and mouse (live and dead).
func New(doc colony.Document) *Exporter {
	names := make(map[string]string, len(doc.Cages)+len(doc.Mice)+len(doc.DeadMice))
	for _, c := range doc.Cages {
		if c.Name != "" {
			names[c.ID] = c.Name
		}
	}
	for _, m := range doc.Mice {
		if m.Name != "" {
			names[m.ID] = m.Name
		}
	}
	for _, m := range doc.DeadMice {
		if m.Name != "" {
			names[m.ID] = m.Name
		}
	}
	return &Exporter{doc: doc, names: names}
}

// WriteJSON writes an array of type-tagged records, or the whole document
// when wholeDocument is set. Records keep their normalized shape; only id
// fields are renamed to display names.
func (e *Exporter) WriteJSON(dir string, wholeDocument bool) (string, error) {
	path := filepath.Join(dir, JSONFilename)
	var payload any
	if wholeDocument {
		payload = e.doc
	} else {
		rows := make([]map[string]any, 0, len(e.doc.Cages)+len(e.doc.Mice))
		for _, c := range e.doc.Cages {
			rows = append(rows, e.taggedRecord("cage", c))
		}
		for _, m := range e.doc.Mice {
			rows = append(rows, e.taggedRecord("mouse", m))
		}
		payload = rows
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCSV writes one file for mice and one for cages. In merged mode a
// single legacy file carries both record types with a type column.
func (e *Exporter) WriteCSV(dir string, merged bool) ([]string, error) {
	if merged {
		rows := make([]map[string]any, 0, len(e.doc.Cages)+len(e.doc.Mice))
		for _, c := range e.doc.Cages {
			rows = append(rows, e.taggedRecord("cage", c))
		}
		for _, m := range e.doc.Mice {
			rows = append(rows, e.taggedRecord("mouse", m))
		}
		path := filepath.Join(dir, MergedCSVFilename)
		if err := writeCSVFile(path, buildTable(rows, mergedColumns)); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	micePath := filepath.Join(dir, MiceCSVFilename)
	if err := writeCSVFile(micePath, buildTable(e.mouseRecords(e.doc.Mice), mouseColumns)); err != nil {
		return nil, err
	}
	cagesPath := filepath.Join(dir, CagesCSVFilename)
	if err := writeCSVFile(cagesPath, buildTable(e.cageRecords(), cageColumns)); err != nil {
		return nil, err
	}
	return []string{micePath, cagesPath}, nil
}

// WriteXLSX writes one workbook with a worksheet per record type.
func (e *Exporter) WriteXLSX(dir string) (string, error) {
	path := filepath.Join(dir, XLSXFilename)
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()

	sheets := []struct {
		name  string
		table [][]string
	}{
		{MiceSheetName, buildTable(e.mouseRecords(e.doc.Mice), mouseColumns)},
		{CagesSheetName, buildTable(e.cageRecords(), cageColumns)},
		{DeadMiceSheetName, buildTable(e.mouseRecords(e.doc.DeadMice), mouseColumns)},
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := book.SetSheetName(book.GetSheetName(0), sheet.name); err != nil {
				return "", fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := book.NewSheet(sheet.name); err != nil {
			return "", fmt.Errorf("add sheet %s: %w", sheet.name, err)
		}
		for r, row := range sheet.table {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return "", err
			}
			if err := book.SetSheetRow(sheet.name, cell, &row); err != nil {
				return "", fmt.Errorf("write sheet %s: %w", sheet.name, err)
			}
		}
	}
	if err := book.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func (e *Exporter) mouseRecords(mice []colony.Mouse) []map[string]any {
	rows := make([]map[string]any, 0, len(mice))
	for _, m := range mice {
		rows = append(rows, e.record(m))
	}
	return rows
}

func (e *Exporter) cageRecords() []map[string]any {
	rows := make([]map[string]any, 0, len(e.doc.Cages))
	for _, c := range e.doc.Cages {
		rows = append(rows, e.record(c))
	}
	return rows
}

func (e *Exporter) taggedRecord(kind string, v any) map[string]any {
	row := e.record(v)
	row["type"] = kind
	return row
}

// record converts an entity into a generic map and substitutes display
// names into every id-valued field.
func (e *Exporter) record(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return map[string]any{}
	}
	for _, key := range []string{"id", "fatherId", "motherId", "cageId", "originalId"} {
		if s, ok := row[key].(string); ok {
			if name, ok := e.names[s]; ok {
				row[key] = name
			}
		}
	}
	for _, key := range []string{"childrenIds", "spouseIds"} {
		items, ok := row[key].([]any)
		if !ok {
			continue
		}
		for i, item := range items {
			if s, ok := item.(string); ok {
				if name, ok := e.names[s]; ok {
					items[i] = name
				}
			}
		}
	}
	return row
}

func writeCSVFile(path string, table [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w := csv.NewWriter(f)
	if err := w.WriteAll(table); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
