package core

import (
	"fmt"
	"slices"

	"mousecolony/pkg/colony"
)

// RelationKind discriminates RemoveRelationship dispatch.
type RelationKind string

const (
	RelationSpouse RelationKind = "spouse"
	RelationChild  RelationKind = "child"
)

func addToSet(set []string, id string) []string {
	if slices.Contains(set, id) {
		return set
	}
	return append(set, id)
}

func removeFromSet(set []string, id string) []string {
	out := set[:0]
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// LinkSpouses adds each mouse to the other's spouse set. Symmetric and
// idempotent; returns false without mutating when either id is absent.
func (s *Store) LinkSpouses(a, b string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.linkSpousesLocked(a, b) {
		return false
	}
	s.appendRecord(fmt.Sprintf("linked spouses %s and %s", s.mouseNameLocked(a), s.mouseNameLocked(b)))
	return true
}

func (s *Store) mouseNameLocked(id string) string {
	if m := s.findMouse(id); m != nil {
		return displayName(*m)
	}
	return id
}

func (s *Store) linkSpousesLocked(a, b string) bool {
	ma, mb := s.findMouse(a), s.findMouse(b)
	if ma == nil || mb == nil || a == b {
		return false
	}
	ma.SpouseIDs = addToSet(ma.SpouseIDs, b)
	mb.SpouseIDs = addToSet(mb.SpouseIDs, a)
	return true
}

// UnlinkSpouses removes each mouse from the other's spouse set.
func (s *Store) UnlinkSpouses(a, b string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ma, mb := s.findMouse(a), s.findMouse(b)
	if ma == nil || mb == nil {
		return false
	}
	ma.SpouseIDs = removeFromSet(ma.SpouseIDs, b)
	mb.SpouseIDs = removeFromSet(mb.SpouseIDs, a)
	s.appendRecord(fmt.Sprintf("unlinked spouses %s and %s", displayName(*ma), displayName(*mb)))
	return true
}

// AddChild sets the child's parent pointers and appends the child to each
// parent's children set. An empty father or mother id is tolerated (partial
// pedigree), and existing non-null parent pointers are preserved when no
// replacement is supplied. No-op when the child id is absent.
func (s *Store) AddChild(childID, fatherID, motherID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	child := s.findMouse(childID)
	if child == nil {
		return false
	}
	if fatherID != "" {
		f := fatherID
		child.FatherID = &f
		if father := s.findMouse(fatherID); father != nil {
			father.ChildrenIDs = addToSet(father.ChildrenIDs, childID)
		}
	}
	if motherID != "" {
		m := motherID
		child.MotherID = &m
		if mother := s.findMouse(motherID); mother != nil {
			mother.ChildrenIDs = addToSet(mother.ChildrenIDs, childID)
		}
	}
	s.appendRecord(fmt.Sprintf("linked child %s to parents", displayName(*child)))
	return true
}

// RemoveChildFromParent drops the child from the parent's children set and
// clears the child's matching parent pointer.
func (s *Store) RemoveChildFromParent(parentID, childID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := s.findMouse(parentID)
	if parent == nil {
		return false
	}
	parent.ChildrenIDs = removeFromSet(parent.ChildrenIDs, childID)
	if child := s.findMouse(childID); child != nil {
		if child.FatherID != nil && *child.FatherID == parentID {
			child.FatherID = nil
		}
		if child.MotherID != nil && *child.MotherID == parentID {
			child.MotherID = nil
		}
	}
	s.appendRecord(fmt.Sprintf("removed child link %s from %s", childID, displayName(*parent)))
	return true
}

// RemoveRelationship dispatches to the spouse or child unlink by kind.
func (s *Store) RemoveRelationship(source, target string, kind RelationKind) bool {
	switch kind {
	case RelationSpouse:
		return s.UnlinkSpouses(source, target)
	case RelationChild:
		return s.RemoveChildFromParent(source, target)
	default:
		return false
	}
}

// AutoPairCage links every male to every female currently housed in the
// cage, skipping juvenile-tagged mice. A full cross-product, not a
// monogamous pairing: 2 males and 2 females yield 4 spousal edges. Returns
// the number of link calls that found both endpoints.
func (s *Store) AutoPairCage(cageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoPairLocked(cageID)
}

func (s *Store) autoPairLocked(cageID string) int {
	var males, females []string
	for i := range s.mice {
		m := &s.mice[i]
		if m.CageID == nil || *m.CageID != cageID {
			continue
		}
		if slices.Contains(m.Statuses, colony.StatusJuvenile) {
			continue
		}
		switch colony.NormalizeSex(m.Sex) {
		case colony.SexMale:
			males = append(males, m.ID)
		case colony.SexFemale:
			females = append(females, m.ID)
		}
	}
	paired := 0
	for _, male := range males {
		for _, female := range females {
			if s.linkSpousesLocked(male, female) {
				paired++
			}
		}
	}
	if paired > 0 {
		s.appendRecord(fmt.Sprintf("auto-paired mice in cage %s", s.cageNameLocked(cageID)))
	}
	return paired
}

// UpdateBreeding records a pairing attempt for the pair key. A fresh attempt
// is appended when the pair has none or its latest attempt reports
// completed; otherwise the patch merges into the latest attempt in place.
func (s *Store) UpdateBreeding(pairKey string, patch colony.BreedingAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempts := s.breeding[pairKey]
	if len(attempts) == 0 || attempts[len(attempts)-1].Status() == colony.BreedingStatusCompleted {
		s.breeding[pairKey] = append(attempts, patch.Clone())
		return
	}
	latest := attempts[len(attempts)-1]
	for k, v := range patch {
		latest[k] = v
	}
}

// Breeding returns a deep copy of the breeding map.
func (s *Store) Breeding() map[string][]colony.BreedingAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]colony.BreedingAttempt, len(s.breeding))
	for key, attempts := range s.breeding {
		cloned := make([]colony.BreedingAttempt, 0, len(attempts))
		for _, a := range attempts {
			cloned = append(cloned, a.Clone())
		}
		out[key] = cloned
	}
	return out
}
