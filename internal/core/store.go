// Package core implements the colony state store: the canonical in-memory
// graph of cages, mice, dead mice, breeding attempts, and the activity log,
// together with the reconciliation passes that keep its denormalized
// back-references consistent.
package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"mousecolony/pkg/colony"
)

// Store owns the five canonical collections. All access goes through its
// methods; entities are handed out as copies and referenced elsewhere by id
// only. A single mutex serializes mutations (single-writer semantics — this
// is a one-user editing session, not a concurrent service).
type Store struct {
	mu       sync.Mutex
	cages    []colony.Cage
	mice     []colony.Mouse
	deadMice []colony.Mouse
	records  []colony.ActivityRecord
	breeding map[string][]colony.BreedingAttempt

	nowFn func() time.Time
	idFn  func() string
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		cages:    []colony.Cage{},
		mice:     []colony.Mouse{},
		deadMice: []colony.Mouse{},
		records:  []colony.ActivityRecord{},
		breeding: map[string][]colony.BreedingAttempt{},
		nowFn:    time.Now,
		idFn:     colony.NewID,
	}
}

// appendRecord adds an activity log entry. Callers hold s.mu.
func (s *Store) appendRecord(action string) {
	s.records = append(s.records, colony.ActivityRecord{
		ID:     s.idFn(),
		Action: action,
		Time:   s.nowFn().Format("2006-01-02 15:04:05"),
	})
}

// appendServiceRecord logs an activity entry on behalf of the service layer
// (cloud sync outcomes).
func (s *Store) appendServiceRecord(action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendRecord(action)
}

func (s *Store) findCage(id string) *colony.Cage {
	for i := range s.cages {
		if s.cages[i].ID == id {
			return &s.cages[i]
		}
	}
	return nil
}

func (s *Store) findMouse(id string) *colony.Mouse {
	for i := range s.mice {
		if s.mice[i].ID == id {
			return &s.mice[i]
		}
	}
	return nil
}

// RowOf derives the row grouping label from a cage name: the substring
// before the first '-', or the default label when the name has no separator.
func RowOf(name string) string {
	if i := strings.Index(name, "-"); i > 0 {
		return strings.TrimSpace(name[:i])
	}
	return colony.DefaultRow
}

// AddCage creates a cage, deriving its row from the name prefix. Cage names
// are not checked for uniqueness.
func (s *Store) AddCage(name string) colony.Cage {
	s.mu.Lock()
	defer s.mu.Unlock()
	cage := colony.Cage{ID: s.idFn(), Name: name, Row: RowOf(name)}
	s.cages = append(s.cages, cage)
	s.appendRecord(fmt.Sprintf("added cage %s (row %s)", cage.Name, cage.Row))
	return cage
}

// DeleteCage removes a cage by id. Member mice stay in the live collection
// but become uncaged; their CageID is nulled so the dangling reference never
// resolves to a stale display name.
func (s *Store) DeleteCage(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cage := s.findCage(id)
	if cage == nil {
		return false
	}
	name := cage.Name
	kept := s.cages[:0]
	for _, c := range s.cages {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.cages = kept
	for i := range s.mice {
		if s.mice[i].CageID != nil && *s.mice[i].CageID == id {
			s.mice[i].CageID = nil
		}
	}
	s.appendRecord(fmt.Sprintf("deleted cage %s", name))
	return true
}

// DeleteRow cascades: every cage in the row and every mouse housed in one of
// those cages is removed. Destructive and irreversible.
func (s *Store) DeleteRow(row string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doomed := map[string]struct{}{}
	keptCages := s.cages[:0]
	for _, c := range s.cages {
		if c.Row == row {
			doomed[c.ID] = struct{}{}
			continue
		}
		keptCages = append(keptCages, c)
	}
	s.cages = keptCages
	keptMice := s.mice[:0]
	for _, m := range s.mice {
		if m.CageID != nil {
			if _, gone := doomed[*m.CageID]; gone {
				continue
			}
		}
		keptMice = append(keptMice, m)
	}
	s.mice = keptMice
	s.appendRecord(fmt.Sprintf("deleted row %s with its cages and mice", row))
}

// RenameRow updates the row field on every matching cage. Cage names are
// left untouched.
func (s *Store) RenameRow(oldName, newName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cages {
		if s.cages[i].Row == oldName {
			s.cages[i].Row = newName
		}
	}
	s.appendRecord(fmt.Sprintf("renamed row %s to %s", oldName, newName))
}

// RenameCage is a pure rename; the row is not recomputed.
func (s *Store) RenameCage(id, newName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cage := s.findCage(id)
	if cage == nil {
		return false
	}
	old := cage.Name
	cage.Name = newName
	s.appendRecord(fmt.Sprintf("renamed cage %s to %s", old, newName))
	return true
}

// MoveCageMice reassigns every mouse housed in from to the to cage. Returns
// false without mutating when the cages are identical or either is absent.
func (s *Store) MoveCageMice(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == to || s.findCage(from) == nil || s.findCage(to) == nil {
		return false
	}
	moved := 0
	for i := range s.mice {
		if s.mice[i].CageID != nil && *s.mice[i].CageID == from {
			dst := to
			s.mice[i].CageID = &dst
			moved++
		}
	}
	s.appendRecord(fmt.Sprintf("moved %d mice from cage %s to %s", moved, s.cageNameLocked(from), s.cageNameLocked(to)))
	return true
}

func (s *Store) cageNameLocked(id string) string {
	if cage := s.findCage(id); cage != nil {
		return cage.Name
	}
	return id
}

// CageName resolves a cage id to its display name, falling back to the raw
// id when the cage is gone. Not an error: logs and exports prefer a stale id
// over a blank.
func (s *Store) CageName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cageNameLocked(id)
}

// AddMouse normalizes and stores a mouse record, then auto-pairs its cage.
func (s *Store) AddMouse(m colony.Mouse) colony.Mouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	m = colony.NormalizeMouse(m)
	if m.ID == "" {
		m.ID = s.idFn()
	}
	s.mice = append(s.mice, colony.CloneMouse(m))
	name := m.Name
	if name == "" {
		name = "unnamed"
	}
	if m.CageID != nil {
		s.appendRecord(fmt.Sprintf("added mouse %s to cage %s", name, s.cageNameLocked(*m.CageID)))
		s.autoPairLocked(*m.CageID)
	} else {
		s.appendRecord(fmt.Sprintf("added mouse %s", name))
	}
	return m
}

// UpdateMouse merges the patch over the existing record: shallow, patch wins
// on conflicting keys. Sex is re-normalized afterwards, and a cage change
// re-triggers auto-pairing for the new cage. Silently a no-op when the id
// does not resolve.
func (s *Store) UpdateMouse(id string, patch map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mouse := s.findMouse(id)
	if mouse == nil {
		return false
	}
	oldCage := ""
	if mouse.CageID != nil {
		oldCage = *mouse.CageID
	}
	merged, err := mergeMousePatch(*mouse, patch)
	if err != nil {
		return false
	}
	merged.ID = id
	merged = colony.NormalizeMouse(merged)
	*mouse = merged
	s.appendRecord(fmt.Sprintf("updated mouse %s", displayName(merged)))
	if merged.CageID != nil && *merged.CageID != oldCage {
		s.autoPairLocked(*merged.CageID)
	}
	return true
}

// mergeMousePatch overlays patch keys onto the JSON shape of the record.
// The patch is an open map so callers can null fields (cageId) explicitly.
func mergeMousePatch(current colony.Mouse, patch map[string]any) (colony.Mouse, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return colony.Mouse{}, err
	}
	var asMap map[string]any
	if err := json.Unmarshal(base, &asMap); err != nil {
		return colony.Mouse{}, err
	}
	for k, v := range patch {
		asMap[k] = v
	}
	remarshaled, err := json.Marshal(asMap)
	if err != nil {
		return colony.Mouse{}, err
	}
	var merged colony.Mouse
	if err := json.Unmarshal(remarshaled, &merged); err != nil {
		return colony.Mouse{}, err
	}
	return merged, nil
}

func displayName(m colony.Mouse) string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// DeleteMouse removes a mouse from the live collection only. Relationship
// arrays on other mice are left dangling; integrity is restored by the next
// PruneBrokenRelations pass. Deferred cleanup is the documented choice: bulk
// deletions pay for one repair pass instead of n cascades.
func (s *Store) DeleteMouse(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mouse := s.findMouse(id)
	if mouse == nil {
		return false
	}
	name := displayName(*mouse)
	kept := s.mice[:0]
	for _, m := range s.mice {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.mice = kept
	s.appendRecord(fmt.Sprintf("deleted mouse %s", name))
	return true
}

// RecordDeath moves the record from the live to the dead collection,
// stamping the death date and cause. The record is moved, not copied, so
// live queries never need a status filter to exclude the deceased.
func (s *Store) RecordDeath(id, cause string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mouse := s.findMouse(id)
	if mouse == nil {
		return false
	}
	dead := colony.CloneMouse(*mouse)
	dead.DeathDate = s.nowFn().Format("2006-01-02 15:04:05")
	dead.CauseOfDeath = cause
	kept := s.mice[:0]
	for _, m := range s.mice {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.mice = kept
	s.deadMice = append(s.deadMice, dead)
	s.appendRecord(fmt.Sprintf("recorded death of %s (%s)", displayName(dead), cause))
	return true
}

// DeleteDeadMouse removes a single dead record. Logs only when something was
// actually removed.
func (s *Store) DeleteDeadMouse(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.deadMice[:0]
	removed := false
	var name string
	for _, m := range s.deadMice {
		if m.ID == id {
			removed = true
			name = displayName(m)
			continue
		}
		kept = append(kept, m)
	}
	s.deadMice = kept
	if removed {
		s.appendRecord(fmt.Sprintf("removed death record of %s", name))
	}
	return removed
}

// ClearDeadMice drops every dead record, returning how many were removed.
func (s *Store) ClearDeadMice() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.deadMice)
	s.deadMice = []colony.Mouse{}
	if n > 0 {
		s.appendRecord(fmt.Sprintf("cleared %d death records", n))
	}
	return n
}

// ToggleStar flips the starred flag used by subset extraction.
func (s *Store) ToggleStar(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mouse := s.findMouse(id)
	if mouse == nil {
		return false
	}
	mouse.Starred = !mouse.Starred
	s.appendRecord(fmt.Sprintf("toggled star on %s", displayName(*mouse)))
	return true
}

// Snapshot returns a deep copy of the whole document.
func (s *Store) Snapshot() colony.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return colony.CloneDocument(colony.Document{
		Cages:    s.cages,
		Mice:     s.mice,
		DeadMice: s.deadMice,
		Records:  s.records,
		Breeding: s.breeding,
	})
}

// Cages returns a copy of the cage collection.
func (s *Store) Cages() []colony.Cage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]colony.Cage, 0, len(s.cages)), s.cages...)
}

// Mice returns a deep copy of the live mouse collection.
func (s *Store) Mice() []colony.Mouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]colony.Mouse, 0, len(s.mice))
	for _, m := range s.mice {
		out = append(out, colony.CloneMouse(m))
	}
	return out
}

// DeadMice returns a deep copy of the dead collection.
func (s *Store) DeadMice() []colony.Mouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]colony.Mouse, 0, len(s.deadMice))
	for _, m := range s.deadMice {
		out = append(out, colony.CloneMouse(m))
	}
	return out
}

// Records returns a copy of the activity log.
func (s *Store) Records() []colony.ActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]colony.ActivityRecord, 0, len(s.records)), s.records...)
}

// FindMouse retrieves a live mouse by id.
func (s *Store) FindMouse(id string) (colony.Mouse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.findMouse(id); m != nil {
		return colony.CloneMouse(*m), true
	}
	return colony.Mouse{}, false
}

// FindCage retrieves a cage by id.
func (s *Store) FindCage(id string) (colony.Cage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.findCage(id); c != nil {
		return *c, true
	}
	return colony.Cage{}, false
}

// Reset clears all five collections. Used on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cages = []colony.Cage{}
	s.mice = []colony.Mouse{}
	s.deadMice = []colony.Mouse{}
	s.records = []colony.ActivityRecord{}
	s.breeding = map[string][]colony.BreedingAttempt{}
}

// Restore overwrites the collections from a loaded document, normalizing on
// the way in. Stored shape is never trusted.
func (s *Store) Restore(doc colony.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := colony.NormalizeDocument(colony.CloneDocument(doc))
	s.cages = normalized.Cages
	s.mice = normalized.Mice
	s.deadMice = normalized.DeadMice
	s.records = normalized.Records
	s.breeding = normalized.Breeding
}
