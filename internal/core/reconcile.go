package core

import (
	"fmt"
	"strings"

	"mousecolony/pkg/colony"
)

// PruneBrokenRelations is the integrity-repair pass the mutation API relies
// on. It filters every spouse/children set down to live mouse ids and nulls
// parent pointers that no longer resolve. Idempotent and safe to call after
// any batch of mutations.
func (s *Store) PruneBrokenRelations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
}

func (s *Store) pruneLocked() {
	live := make(map[string]struct{}, len(s.mice))
	for i := range s.mice {
		live[s.mice[i].ID] = struct{}{}
	}
	for i := range s.mice {
		m := &s.mice[i]
		m.SpouseIDs = filterLive(m.SpouseIDs, live)
		m.ChildrenIDs = filterLive(m.ChildrenIDs, live)
		if m.FatherID != nil {
			if _, ok := live[*m.FatherID]; !ok {
				m.FatherID = nil
			}
		}
		if m.MotherID != nil {
			if _, ok := live[*m.MotherID]; !ok {
				m.MotherID = nil
			}
		}
	}
}

func filterLive(ids []string, live map[string]struct{}) []string {
	out := ids[:0]
	for _, id := range ids {
		if _, ok := live[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// DedupeOptions selects the grouping key for DedupeMice.
type DedupeOptions struct {
	// PreferID groups duplicates by identifier; otherwise records collide on
	// a case-insensitive (name, birthDate, sex) composite. The composite key
	// ignores genotype and cage, so two distinct mice sharing all three
	// fields merge silently — kept for parity with historical data, flagged
	// as a hazard in DESIGN.md.
	PreferID bool
}

// DedupeMice merges duplicate mouse records and returns the final count.
// Within a colliding group the earliest record wins field-by-field: scalars
// keep the first non-empty value, notes concatenate, relationship sets
// union, starred is true if any source was starred. A prune pass follows so
// merged-away ids do not dangle.
func (s *Store) DedupeMice(opts DedupeOptions) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.dedupeLocked(opts)
	if removed > 0 {
		s.appendRecord(fmt.Sprintf("merged %d duplicate mice", removed))
	}
	return len(s.mice)
}

func (s *Store) dedupeLocked(opts DedupeOptions) int {
	groups := map[string]int{} // key -> index into merged
	merged := make([]colony.Mouse, 0, len(s.mice))
	for _, m := range s.mice {
		key := dedupeKey(m, opts.PreferID)
		if at, seen := groups[key]; seen {
			merged[at] = mergeMice(merged[at], m)
			continue
		}
		groups[key] = len(merged)
		merged = append(merged, colony.CloneMouse(m))
	}
	removed := len(s.mice) - len(merged)
	s.mice = merged
	s.pruneLocked()
	return removed
}

func dedupeKey(m colony.Mouse, preferID bool) string {
	if preferID {
		return m.ID
	}
	return strings.ToLower(m.Name) + "\x00" + strings.ToLower(m.BirthDate) + "\x00" + strings.ToLower(m.Sex)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonNil(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

func unionSets(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, id := range b {
		out = addToSet(out, id)
	}
	return out
}

func mergeMice(first, second colony.Mouse) colony.Mouse {
	out := first
	out.Name = firstNonEmpty(first.Name, second.Name)
	out.Sex = firstNonEmpty(first.Sex, second.Sex)
	out.Genotype = firstNonEmpty(first.Genotype, second.Genotype)
	out.BirthDate = firstNonEmpty(first.BirthDate, second.BirthDate)
	out.State = firstNonEmpty(first.State, second.State)
	out.DeathDate = firstNonEmpty(first.DeathDate, second.DeathDate)
	out.CauseOfDeath = firstNonEmpty(first.CauseOfDeath, second.CauseOfDeath)
	out.CageID = firstNonNil(first.CageID, second.CageID)
	out.FatherID = firstNonNil(first.FatherID, second.FatherID)
	out.MotherID = firstNonNil(first.MotherID, second.MotherID)
	out.SpouseIDs = unionSets(first.SpouseIDs, second.SpouseIDs)
	out.ChildrenIDs = unionSets(first.ChildrenIDs, second.ChildrenIDs)
	out.Statuses = unionSets(first.Statuses, second.Statuses)
	out.Starred = first.Starred || second.Starred
	switch {
	case first.Notes == "":
		out.Notes = second.Notes
	case second.Notes == "" || second.Notes == first.Notes:
		out.Notes = first.Notes
	default:
		out.Notes = first.Notes + " | " + second.Notes
	}
	return out
}

// AssignUncaged houses every uncaged mouse in the given cage and returns the
// number affected.
func (s *Store) AssignUncaged(cageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findCage(cageID) == nil {
		return 0
	}
	count := 0
	for i := range s.mice {
		if s.mice[i].CageID == nil {
			id := cageID
			s.mice[i].CageID = &id
			count++
		}
	}
	if count > 0 {
		s.appendRecord(fmt.Sprintf("assigned %d uncaged mice to cage %s", count, s.cageNameLocked(cageID)))
	}
	return count
}

// ReplaceWithImport performs full-state replacement: all five collections
// are cleared and repopulated from the payload under the same normalization
// as a cloud load, then pruned and deduped by id as a safety net against
// malformed imports. A single summary record is logged.
func (s *Store) ReplaceWithImport(doc colony.Document) (mice, cages int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := colony.NormalizeDocument(colony.CloneDocument(doc))
	s.cages = normalized.Cages
	s.mice = normalized.Mice
	s.deadMice = normalized.DeadMice
	s.records = normalized.Records
	s.breeding = normalized.Breeding
	s.pruneLocked()
	s.dedupeLocked(DedupeOptions{PreferID: true})
	s.appendRecord(fmt.Sprintf("replaced state from import: %d cages, %d mice, %d dead", len(s.cages), len(s.mice), len(s.deadMice)))
	return len(s.mice), len(s.cages)
}
