package importer

import (
	"fmt"
	"regexp"
	"strings"

	"mousecolony/pkg/colony"
)

// keyAliases maps normalized header keys onto canonical field names.
// Covers English variants plus the Chinese headers seen in historical
// spreadsheets.
var keyAliases = map[string]string{
	"id":          "id",
	"name":        "name",
	"code":        "name",
	"编号":          "name",
	"名称":          "name",
	"sex":         "sex",
	"gender":      "sex",
	"性别":          "sex",
	"genotype":    "genotype",
	"gene":        "genotype",
	"基因型":         "genotype",
	"birthdate":   "birthDate",
	"birthday":    "birthDate",
	"birth":       "birthDate",
	"dob":         "birthDate",
	"出生日期":        "birthDate",
	"deathdate":   "deathDate",
	"death":       "deathDate",
	"死亡日期":        "deathDate",
	"cageid":      "cageId",
	"cage":        "cageName",
	"cagename":    "cageName",
	"笼位":          "cageName",
	"row":         "row",
	"group":       "row",
	"分组":          "row",
	"statuses":    "statuses",
	"status":      "statuses",
	"状态":          "statuses",
	"notes":       "notes",
	"note":        "notes",
	"remark":      "notes",
	"备注":          "notes",
	"starred":     "starred",
	"state":       "state",
	"fatherid":    "fatherId",
	"father":      "fatherId",
	"motherid":    "motherId",
	"mother":      "motherId",
	"spouseids":   "spouseIds",
	"spouses":     "spouseIds",
	"childrenids": "childrenIds",
	"children":    "childrenIds",
	"causeofdeath": "causeOfDeath",
	"type":        "type",
	"kind":        "type",
	"category":    "type",
	"类型":          "type",
}

var statusSplitter = regexp.MustCompile(`[,，;\s]+`)

// normalizeKeys lowercases, trims, and strips separators from header keys,
// then resolves aliases. Unknown keys are dropped.
func normalizeKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		folded := strings.ToLower(strings.TrimSpace(key))
		folded = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(folded)
		if canonical, ok := keyAliases[folded]; ok {
			out[canonical] = value
		}
	}
	return out
}

// rowType decides whether a normalized row describes a cage or a mouse.
// An explicit type column wins; otherwise mouse-only fields imply mouse,
// a row label or hyphenated name implies cage, and mouse is the default.
func rowType(row map[string]any) string {
	if t := stringField(row, "type"); t != "" {
		switch strings.ToLower(t) {
		case "cage", "笼":
			return "cage"
		case "mouse", "鼠":
			return "mouse"
		}
	}
	if stringField(row, "sex") != "" || stringField(row, "birthDate") != "" {
		return "mouse"
	}
	if stringField(row, "row") != "" {
		return "cage"
	}
	if name := stringField(row, "name"); strings.Contains(name, "-") && stringField(row, "genotype") == "" {
		return "cage"
	}
	return "mouse"
}

func rowToCage(row map[string]any) colony.Cage {
	cage := colony.Cage{
		ID:   stringField(row, "id"),
		Name: stringField(row, "name"),
		Row:  stringField(row, "row"),
	}
	if cage.ID == "" {
		cage.ID = colony.NewID()
	}
	if cage.Row == "" {
		cage.Row = rowOf(cage.Name)
	}
	return cage
}

// rowOf derives the row label from a cage name: the prefix before the
// first hyphen, or the default label when there is none.
func rowOf(name string) string {
	if i := strings.Index(name, "-"); i > 0 {
		return name[:i]
	}
	return colony.DefaultRow
}

type pendingMouse struct {
	mouse     colony.Mouse
	cageName  string
	deathDate string
}

func rowToMouse(row map[string]any) pendingMouse {
	m := colony.Mouse{
		ID:        stringField(row, "id"),
		Name:      stringField(row, "name"),
		Sex:       colony.NormalizeSex(stringField(row, "sex")),
		Genotype:  stringField(row, "genotype"),
		BirthDate: colony.NormalizeDate(stringField(row, "birthDate")),
		Notes:     stringField(row, "notes"),
		Starred:   boolField(row, "starred"),
	}
	if m.ID == "" {
		m.ID = colony.NewID()
	}
	if id := stringField(row, "cageId"); id != "" {
		m.CageID = &id
	}
	if id := stringField(row, "fatherId"); id != "" {
		m.FatherID = &id
	}
	if id := stringField(row, "motherId"); id != "" {
		m.MotherID = &id
	}
	if raw := stringField(row, "statuses"); raw != "" {
		m.Statuses = splitStatuses(raw)
	}
	// Relationship arrays carry over only when they are already
	// array-shaped; free text never becomes a pedigree link.
	m.SpouseIDs = arrayField(row, "spouseIds")
	m.ChildrenIDs = arrayField(row, "childrenIds")
	if cause := stringField(row, "causeOfDeath"); cause != "" {
		m.CauseOfDeath = cause
	}
	m = colony.NormalizeMouse(m)
	return pendingMouse{
		mouse:     m,
		cageName:  stringField(row, "cageName"),
		deathDate: colony.NormalizeDate(stringField(row, "deathDate")),
	}
}

func splitStatuses(raw string) []string {
	parts := statusSplitter.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stringField(row map[string]any, key string) string {
	value, ok := row[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return ""
	}
}

func boolField(row map[string]any, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		}
	case float64:
		return v != 0
	}
	return false
}

func arrayField(row map[string]any, key string) []string {
	items, ok := row[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
