package core

import (
	"errors"
	"strings"

	"mousecolony/pkg/colony"
)

// ErrEmptySubset aborts subset extraction when no mouse satisfies any of the
// enabled inclusion predicates. The collections are left untouched.
var ErrEmptySubset = errors.New("subset extraction matched no mice")

// ExtractOptions configures ExtractUsedSubset.
type ExtractOptions struct {
	IncludeStarred bool // seed mice with the starred flag
	IncludeCaged   bool // seed mice with a cage assignment
	IncludeNoted   bool // seed mice with non-empty notes
	// Hops bounds the relationship traversal expanding the seed set over
	// spouse, children, and parent edges. Zero keeps the bare seed.
	Hops int
	// CatchAllCage names the cage that receives subset mice left without a
	// housing assignment after filtering. Created on demand.
	CatchAllCage string
}

// DefaultCatchAllCage houses extracted mice whose cage fell outside the
// subset.
const DefaultCatchAllCage = "unassigned-01"

// ExtractUsedSubset narrows the whole state down to the mice a user actually
// works with: a seed set from the inclusion predicates, expanded a bounded
// number of relationship hops, plus the minimal cage set covering it. The
// filtered payload replaces the full state via ReplaceWithImport. When the
// seed is empty the operation aborts with ErrEmptySubset and changes
// nothing.
func (s *Store) ExtractUsedSubset(opts ExtractOptions) (int, error) {
	s.mu.Lock()

	seed := map[string]struct{}{}
	for i := range s.mice {
		m := &s.mice[i]
		switch {
		case opts.IncludeStarred && m.Starred:
		case opts.IncludeCaged && m.CageID != nil:
		case opts.IncludeNoted && strings.TrimSpace(m.Notes) != "":
		default:
			continue
		}
		seed[m.ID] = struct{}{}
	}
	if len(seed) == 0 {
		s.mu.Unlock()
		return 0, ErrEmptySubset
	}

	index := make(map[string]*colony.Mouse, len(s.mice))
	for i := range s.mice {
		index[s.mice[i].ID] = &s.mice[i]
	}

	// Fixed-point expansion bounded by the hop count. Each hop expands the
	// frontier as of the previous hop so the bound is a real edge distance.
	frontier := make([]string, 0, len(seed))
	for id := range seed {
		frontier = append(frontier, id)
	}
	for hop := 0; hop < opts.Hops && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			m, ok := index[id]
			if !ok {
				continue
			}
			for _, neighbor := range neighborIDs(m) {
				if _, in := seed[neighbor]; in {
					continue
				}
				if _, live := index[neighbor]; !live {
					continue
				}
				seed[neighbor] = struct{}{}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	keptMice := make([]colony.Mouse, 0, len(seed))
	usedCages := map[string]struct{}{}
	for _, m := range s.mice {
		if _, in := seed[m.ID]; !in {
			continue
		}
		keptMice = append(keptMice, colony.CloneMouse(m))
		if m.CageID != nil {
			usedCages[*m.CageID] = struct{}{}
		}
	}

	keptCages := make([]colony.Cage, 0, len(usedCages))
	cageIDs := map[string]struct{}{}
	for _, c := range s.cages {
		if _, used := usedCages[c.ID]; used {
			keptCages = append(keptCages, c)
			cageIDs[c.ID] = struct{}{}
		}
	}

	// Homeless subset members land in the catch-all cage, reusing a kept
	// cage with that name before creating one.
	catchAllName := opts.CatchAllCage
	if catchAllName == "" {
		catchAllName = DefaultCatchAllCage
	}
	var catchAllID string
	for _, c := range keptCages {
		if c.Name == catchAllName {
			catchAllID = c.ID
			break
		}
	}
	for i := range keptMice {
		m := &keptMice[i]
		homeless := m.CageID == nil
		if !homeless {
			_, covered := cageIDs[*m.CageID]
			homeless = !covered
		}
		if !homeless {
			continue
		}
		if catchAllID == "" {
			catchAll := colony.Cage{ID: s.idFn(), Name: catchAllName, Row: RowOf(catchAllName)}
			keptCages = append(keptCages, catchAll)
			catchAllID = catchAll.ID
		}
		id := catchAllID
		m.CageID = &id
	}

	payload := colony.Document{
		Cages:    keptCages,
		Mice:     keptMice,
		DeadMice: s.deadMice,
		Records:  s.records,
		Breeding: s.breeding,
	}
	s.mu.Unlock()

	count, _ := s.ReplaceWithImport(payload)
	return count, nil
}

func neighborIDs(m *colony.Mouse) []string {
	out := make([]string, 0, len(m.SpouseIDs)+len(m.ChildrenIDs)+2)
	out = append(out, m.SpouseIDs...)
	out = append(out, m.ChildrenIDs...)
	if m.FatherID != nil {
		out = append(out, *m.FatherID)
	}
	if m.MotherID != nil {
		out = append(out, *m.MotherID)
	}
	return out
}
