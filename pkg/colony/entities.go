// Package colony defines the persistent entities, document aggregate, and
// normalization primitives shared by the mouse colony ledger.
package colony

// Sex is the canonical sex token stored on a mouse record.
type Sex = string

// Canonical sex tokens. Anything that does not normalize to male or female
// is stored as SexNormal (unknown/unspecified).
const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexNormal Sex = "normal"
)

// StateNormal is the default lifecycle tag assigned to new mouse records.
const StateNormal = "normal"

// StatusJuvenile marks a mouse excluded from cage auto-pairing.
const StatusJuvenile = "juvenile"

// DefaultRow is the grouping label applied to cages whose name carries no
// row prefix.
const DefaultRow = "ungrouped"

// Cage is a housing unit. Row is derived from the name prefix before the
// first '-' at add time and is not recomputed on rename.
type Cage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Row  string `json:"row"`
}

// Mouse is an individual animal record. Relationship fields are weak
// references: deleting the referenced mouse does not update them, the prune
// pass does.
type Mouse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Sex         Sex      `json:"sex"`
	Genotype    string   `json:"genotype"`
	BirthDate   string   `json:"birthDate"`
	CageID      *string  `json:"cageId"`
	FatherID    *string  `json:"fatherId"`
	MotherID    *string  `json:"motherId"`
	SpouseIDs   []string `json:"spouseIds"`
	ChildrenIDs []string `json:"childrenIds"`
	Statuses    []string `json:"statuses"`
	Starred     bool     `json:"starred"`
	State       string   `json:"state"`
	Notes       string   `json:"notes"`

	// Death metadata, set only on records living in the dead collection.
	DeathDate    string `json:"deathDate,omitempty"`
	CauseOfDeath string `json:"causeOfDeath,omitempty"`
}

// ActivityRecord is an append-only log entry describing a store mutation.
type ActivityRecord struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Time   string `json:"time"`
}

// BreedingAttempt is an open record owned by the presentation layer; the
// store only interprets its status field.
type BreedingAttempt map[string]any

// BreedingStatusCompleted gates appending a fresh attempt for a pair.
const BreedingStatusCompleted = "completed"

// Status returns the attempt's status field as a string, or "" when absent.
func (a BreedingAttempt) Status() string {
	s, _ := a["status"].(string)
	return s
}

// Clone returns a shallow copy of the attempt map.
func (a BreedingAttempt) Clone() BreedingAttempt {
	if a == nil {
		return nil
	}
	cp := make(BreedingAttempt, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}

// Document is the aggregate persisted per owner identity.
type Document struct {
	Cages    []Cage                       `json:"cages"`
	Mice     []Mouse                      `json:"mice"`
	DeadMice []Mouse                      `json:"deadMice"`
	Records  []ActivityRecord             `json:"records"`
	Breeding map[string][]BreedingAttempt `json:"breeding"`
}

// EmptyDocument returns a document with all collections allocated empty.
func EmptyDocument() Document {
	return Document{
		Cages:    []Cage{},
		Mice:     []Mouse{},
		DeadMice: []Mouse{},
		Records:  []ActivityRecord{},
		Breeding: map[string][]BreedingAttempt{},
	}
}

// CloneMouse deep-copies a mouse record including its relationship slices.
func CloneMouse(m Mouse) Mouse {
	cp := m
	if m.CageID != nil {
		v := *m.CageID
		cp.CageID = &v
	}
	if m.FatherID != nil {
		v := *m.FatherID
		cp.FatherID = &v
	}
	if m.MotherID != nil {
		v := *m.MotherID
		cp.MotherID = &v
	}
	cp.SpouseIDs = append(make([]string, 0, len(m.SpouseIDs)), m.SpouseIDs...)
	cp.ChildrenIDs = append(make([]string, 0, len(m.ChildrenIDs)), m.ChildrenIDs...)
	cp.Statuses = append(make([]string, 0, len(m.Statuses)), m.Statuses...)
	return cp
}

// CloneDocument deep-copies a document. Copies are always allocated, never
// nil, so a clone of a normalized document keeps its empty-but-present
// collections across serialization.
func CloneDocument(doc Document) Document {
	cp := Document{
		Cages:    append(make([]Cage, 0, len(doc.Cages)), doc.Cages...),
		Mice:     make([]Mouse, 0, len(doc.Mice)),
		DeadMice: make([]Mouse, 0, len(doc.DeadMice)),
		Records:  append(make([]ActivityRecord, 0, len(doc.Records)), doc.Records...),
		Breeding: make(map[string][]BreedingAttempt, len(doc.Breeding)),
	}
	for _, m := range doc.Mice {
		cp.Mice = append(cp.Mice, CloneMouse(m))
	}
	for _, m := range doc.DeadMice {
		cp.DeadMice = append(cp.DeadMice, CloneMouse(m))
	}
	for key, attempts := range doc.Breeding {
		cloned := make([]BreedingAttempt, 0, len(attempts))
		for _, a := range attempts {
			cloned = append(cloned, a.Clone())
		}
		cp.Breeding[key] = cloned
	}
	return cp
}
