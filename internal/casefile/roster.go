package casefile

import "fmt"

// Roster is an ordered, ID-indexed list of cases. It lives in memory only.
type Roster struct {
	cases []PatientCase
	index map[string]int
}

// NewRoster builds a roster from cases, rejecting invalid or duplicate entries.
func NewRoster(cases ...PatientCase) (*Roster, error) {
	r := &Roster{index: make(map[string]int, len(cases))}
	for _, pc := range cases {
		if err := r.Append(pc); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Append adds a case at the end of the roster.
func (r *Roster) Append(pc PatientCase) error {
	if err := r.check(pc); err != nil {
		return err
	}
	r.cases = append(r.cases, pc)
	r.reindex()
	return nil
}

// Add inserts a case at the front of the roster, the way freshly analyzed
// cases appear first on the dashboard.
func (r *Roster) Add(pc PatientCase) error {
	if err := r.check(pc); err != nil {
		return err
	}
	r.cases = append([]PatientCase{pc}, r.cases...)
	r.reindex()
	return nil
}

// Get looks a case up by ID.
func (r *Roster) Get(id string) (PatientCase, bool) {
	i, ok := r.index[id]
	if !ok {
		return PatientCase{}, false
	}
	return r.cases[i], true
}

// All returns a copy of the cases in display order.
func (r *Roster) All() []PatientCase {
	out := make([]PatientCase, len(r.cases))
	copy(out, r.cases)
	return out
}

// Len returns the number of cases.
func (r *Roster) Len() int {
	return len(r.cases)
}

// Count returns how many cases match the predicate.
func (r *Roster) Count(match func(PatientCase) bool) int {
	n := 0
	for _, pc := range r.cases {
		if match(pc) {
			n++
		}
	}
	return n
}

func (r *Roster) check(pc PatientCase) error {
	if err := pc.Validate(); err != nil {
		return err
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if _, exists := r.index[pc.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, pc.ID)
	}
	return nil
}

func (r *Roster) reindex() {
	for i, pc := range r.cases {
		r.index[pc.ID] = i
	}
}
