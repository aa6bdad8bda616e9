package colony

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// sexAliases maps the tokens seen across historical documents and imports to
// canonical values. Tokens not present here pass through NormalizeSex
// unchanged apart from empty input.
var sexAliases = map[string]Sex{
	"♂":      SexMale,
	"male":   SexMale,
	"m":      SexMale,
	"公":      SexMale,
	"雄":      SexMale,
	"♀":      SexFemale,
	"female": SexFemale,
	"f":      SexFemale,
	"母":      SexFemale,
	"雌":      SexFemale,
}

// NormalizeSex collapses symbolic, single-letter, English, and Chinese sex
// tokens to the canonical male/female values. Empty input becomes normal;
// unrecognized non-empty input is returned lowercased but otherwise intact.
func NormalizeSex(raw string) Sex {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return SexNormal
	}
	if canonical, ok := sexAliases[token]; ok {
		return canonical
	}
	return token
}

// dateLayouts are tried in order by NormalizeDate after the fast paths.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC3339,
	time.RFC1123,
}

// NormalizeDate renders any parseable date input as a fixed-width YYYY-MM-DD
// string. Unparseable input degrades to the empty string rather than failing.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	// Already ISO-shaped: trust the prefix, repad the components.
	if t, err := time.Parse("2006-1-2", strings.SplitN(s, "T", 2)[0]); err == nil {
		return t.Format("2006-01-02")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// NormalizeMouse applies the defaulting and canonicalization performed at
// every ingestion boundary: relationship arrays become empty (never nil),
// sex collapses to canonical tokens, the lifecycle tag defaults to normal,
// and the birth date is reshaped. Stored shape is never trusted.
func NormalizeMouse(m Mouse) Mouse {
	m.Sex = NormalizeSex(m.Sex)
	m.BirthDate = NormalizeDate(m.BirthDate)
	if m.SpouseIDs == nil {
		m.SpouseIDs = []string{}
	}
	if m.ChildrenIDs == nil {
		m.ChildrenIDs = []string{}
	}
	if m.Statuses == nil {
		m.Statuses = []string{}
	}
	if m.State == "" {
		m.State = StateNormal
	}
	if m.DeathDate != "" {
		m.DeathDate = NormalizeDate(m.DeathDate)
	}
	return m
}

// CoerceBreeding converts a stored breeding value into sequence form.
// Historical documents stored a single attempt object per pair; newer ones
// store a sequence. Always coerce on read.
func CoerceBreeding(raw json.RawMessage) []BreedingAttempt {
	if len(raw) == 0 {
		return []BreedingAttempt{}
	}
	var attempts []BreedingAttempt
	if err := json.Unmarshal(raw, &attempts); err == nil {
		if attempts == nil {
			attempts = []BreedingAttempt{}
		}
		return attempts
	}
	var single BreedingAttempt
	if err := json.Unmarshal(raw, &single); err == nil && len(single) > 0 {
		return []BreedingAttempt{single}
	}
	return []BreedingAttempt{}
}

// NormalizeDocument runs every record of a loaded document through the
// ingestion normalizers and guarantees non-nil collections.
func NormalizeDocument(doc Document) Document {
	out := Document{
		Cages:    doc.Cages,
		Records:  doc.Records,
		Mice:     make([]Mouse, 0, len(doc.Mice)),
		DeadMice: make([]Mouse, 0, len(doc.DeadMice)),
		Breeding: doc.Breeding,
	}
	if out.Cages == nil {
		out.Cages = []Cage{}
	}
	if out.Records == nil {
		out.Records = []ActivityRecord{}
	}
	if out.Breeding == nil {
		out.Breeding = map[string][]BreedingAttempt{}
	}
	for _, m := range doc.Mice {
		out.Mice = append(out.Mice, NormalizeMouse(m))
	}
	for _, m := range doc.DeadMice {
		out.DeadMice = append(out.DeadMice, NormalizeMouse(m))
	}
	for key, attempts := range out.Breeding {
		if attempts == nil {
			out.Breeding[key] = []BreedingAttempt{}
		}
	}
	return out
}

// rawDocument mirrors Document with breeding values kept raw so historical
// single-object entries can be coerced during decode.
type rawDocument struct {
	Cages    []Cage                     `json:"cages"`
	Mice     []Mouse                    `json:"mice"`
	DeadMice []Mouse                    `json:"deadMice"`
	Records  []ActivityRecord           `json:"records"`
	Breeding map[string]json.RawMessage `json:"breeding"`
}

// DecodeDocument unmarshals a serialized document, coercing breeding values
// to sequence form and normalizing every mouse record.
func DecodeDocument(data []byte) (Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, err
	}
	doc := Document{
		Cages:    raw.Cages,
		Mice:     raw.Mice,
		DeadMice: raw.DeadMice,
		Records:  raw.Records,
		Breeding: make(map[string][]BreedingAttempt, len(raw.Breeding)),
	}
	for key, value := range raw.Breeding {
		doc.Breeding[key] = CoerceBreeding(value)
	}
	return NormalizeDocument(doc), nil
}

// PairKey derives the breeding map key for two parents. The ids are sorted
// so the key is independent of argument order.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}
