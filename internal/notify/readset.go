package notify

import (
	"sort"
	"sync"
)

// ReadSet tracks dismissed alert ids per operator session. It lives only in process
// memory and is lost on restart.
type ReadSet struct {
	mu       sync.RWMutex
	sessions map[string]map[string]struct{}
}

// NewReadSet creates an empty read set.
func NewReadSet() *ReadSet {
	return &ReadSet{sessions: make(map[string]map[string]struct{})}
}

// MarkRead records ids as read for session and returns how many were new.
func (r *ReadSet) MarkRead(session string, ids ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[session]
	if !ok {
		set = make(map[string]struct{})
		r.sessions[session] = set
	}

	added := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, seen := set[id]; !seen {
			set[id] = struct{}{}
			added++
		}
	}
	return added
}

// IsRead reports whether id was marked read in session.
func (r *ReadSet) IsRead(session, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[session][id]
	return ok
}

// Read returns the sorted ids marked read in session.
func (r *ReadSet) Read(session string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.sessions[session]))
	for id := range r.sessions[session] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clear forgets session.
func (r *ReadSet) Clear(session string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, session)
}
