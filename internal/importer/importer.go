// Package importer ingests heterogeneous tabular and document inputs —
// JSON whole-documents, JSON row arrays, delimited text, spreadsheets —
// and normalizes them into canonical colony records. The pipeline is
// deliberately lossy: unparseable rows degrade to default fields, only
// structural damage aborts an import.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"mousecolony/pkg/colony"
)

// ImportFile reads and normalizes a file, detecting the source format by
// extension. Supported: .json, .csv, .xlsx, .xls.
func ImportFile(path string) (colony.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return colony.Document{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ImportJSON(data)
	case ".csv":
		return ImportCSV(data)
	case ".xlsx", ".xls":
		return ImportXLSX(data)
	default:
		return colony.Document{}, fmt.Errorf("unsupported file type %s", filepath.Ext(path))
	}
}

// ImportJSON accepts either a whole colony document or a flat array of
// row-like records. Any other shape, including a bare object that is not
// document-shaped, is a structural error.
func ImportJSON(data []byte) (colony.Document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return colony.Document{}, fmt.Errorf("empty json input")
	}
	if trimmed[0] == '[' {
		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			return colony.Document{}, fmt.Errorf("parse json rows: %w", err)
		}
		return normalizeRows(rows), nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return colony.Document{}, fmt.Errorf("parse json document: %w", err)
	}
	if !hasDocumentShape(probe) {
		return colony.Document{}, fmt.Errorf("unsupported import structure: object is not a colony document")
	}
	doc, err := colony.DecodeDocument(data)
	if err != nil {
		return colony.Document{}, fmt.Errorf("parse json document: %w", err)
	}
	return fixCageRows(doc), nil
}

func hasDocumentShape(probe map[string]json.RawMessage) bool {
	for _, key := range []string{"cages", "mice", "deadMice", "records", "breeding"} {
		if _, ok := probe[key]; ok {
			return true
		}
	}
	return false
}

// fixCageRows recomputes missing row labels after a whole-document import.
func fixCageRows(doc colony.Document) colony.Document {
	for i := range doc.Cages {
		if doc.Cages[i].Row == "" {
			doc.Cages[i].Row = rowOf(doc.Cages[i].Name)
		}
	}
	return doc
}

// ImportCSV parses delimited text with a header row into row records.
func ImportCSV(data []byte) (colony.Document, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	all, err := reader.ReadAll()
	if err != nil {
		return colony.Document{}, fmt.Errorf("parse csv: %w", err)
	}
	return normalizeRows(tableToRows(all)), nil
}

// ImportXLSX parses the first worksheet of a workbook, header row first.
func ImportXLSX(data []byte) (colony.Document, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return colony.Document{}, fmt.Errorf("parse workbook: %w", err)
	}
	defer func() { _ = book.Close() }()
	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return colony.Document{}, fmt.Errorf("workbook has no sheets")
	}
	table, err := book.GetRows(sheets[0])
	if err != nil {
		return colony.Document{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return normalizeRows(tableToRows(table)), nil
}

// tableToRows zips a header row with the remaining rows into key-value maps.
func tableToRows(table [][]string) []map[string]any {
	if len(table) < 2 {
		return nil
	}
	header := table[0]
	rows := make([]map[string]any, 0, len(table)-1)
	for _, line := range table[1:] {
		row := make(map[string]any, len(header))
		empty := true
		for i, key := range header {
			value := ""
			if i < len(line) {
				value = line[i]
			}
			if strings.TrimSpace(value) != "" {
				empty = false
			}
			row[key] = value
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

// normalizeRows resolves each row to a cage or mouse record, then maps
// cage-name references onto cage ids within the same payload.
func normalizeRows(rows []map[string]any) colony.Document {
	doc := colony.EmptyDocument()
	var pending []pendingMouse
	for _, raw := range rows {
		row := normalizeKeys(raw)
		switch rowType(row) {
		case "cage":
			doc.Cages = append(doc.Cages, rowToCage(row))
		default:
			pending = append(pending, rowToMouse(row))
		}
	}
	cageByName := make(map[string]string, len(doc.Cages))
	for _, c := range doc.Cages {
		cageByName[strings.ToLower(c.Name)] = c.ID
	}
	for _, pm := range pending {
		m := pm.mouse
		if m.CageID == nil && pm.cageName != "" {
			if id, ok := cageByName[strings.ToLower(pm.cageName)]; ok {
				m.CageID = &id
			}
		}
		if pm.deathDate != "" {
			m.DeathDate = pm.deathDate
			doc.DeadMice = append(doc.DeadMice, m)
			continue
		}
		doc.Mice = append(doc.Mice, m)
	}
	return doc
}
