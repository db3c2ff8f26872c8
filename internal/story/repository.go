package story

// Repository is the ordered, read-only set of passages of one story.
//
// INVARIANTS:
//   - passages order equals document order and never changes after construction
//   - byID and byName point at the FIRST passage carrying that id or name
type Repository struct {
	passages []Passage
	byID     map[int]int
	byName   map[string]int
}

// NewRepository builds a repository with one passage per entry.
// No uniqueness validation is performed on ids or names.
func NewRepository(entries []Entry) *Repository {
	r := &Repository{
		passages: make([]Passage, 0, len(entries)),
		byID:     make(map[int]int, len(entries)),
		byName:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		r.passages = append(r.passages, passageFromEntry(e))
		if _, seen := r.byID[e.ID]; !seen {
			r.byID[e.ID] = i
		}
		if _, seen := r.byName[e.Name]; !seen {
			r.byName[e.Name] = i
		}
	}

	return r
}

// ByID returns the first passage with the given id.
func (r *Repository) ByID(id int) (Passage, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Passage{}, false
	}
	return r.passages[i], true
}

// ByName returns the first passage with the given name.
func (r *Repository) ByName(name string) (Passage, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Passage{}, false
	}
	return r.passages[i], true
}

// ByTag returns every passage tagged with tag, in repository order.
// The result is empty, never nil, when nothing matches.
func (r *Repository) ByTag(tag string) []Passage {
	out := []Passage{}
	for _, p := range r.passages {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// All returns all passages in repository order.
func (r *Repository) All() []Passage {
	out := make([]Passage, len(r.passages))
	copy(out, r.passages)
	return out
}

// Len returns the number of passages, duplicates included.
func (r *Repository) Len() int {
	return len(r.passages)
}
