// Package registry holds the process-wide lookup tables shared by every
// session: the Directory of reachable sessions and the Username Index.
//
// Both tables are safe for concurrent use and every operation touches a
// single key.  A Registry is constructed once by the server and passed to
// each connection handler; nothing here is package-level state.
package registry

import "sync"

// Handle is the sending side of a session's relay channel.  Other
// sessions reach a session only through its Handle.
type Handle interface {
	Send(payload string) error
}

// Registry bundles the Directory and Username Index for one server.
type Registry struct {
	Directory *Directory
	Usernames *UsernameIndex
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		Directory: NewDirectory(),
		Usernames: NewUsernameIndex(),
	}
}

// ── Directory ────────────────────────────────────────────────────────

// Directory maps a live session id to its relay Handle.  An entry is
// present iff the session is live and reachable.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]Handle
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{entries: make(map[string]Handle)}
}

// Register inserts or replaces the entry for id.
func (d *Directory) Register(id string, h Handle) {
	d.mu.Lock()
	d.entries[id] = h
	d.mu.Unlock()
}

// Lookup returns the Handle for id.  A missing id means the session is
// unreachable; that is a normal result, not an error.
func (d *Directory) Lookup(id string) (Handle, bool) {
	d.mu.RLock()
	h, ok := d.entries[id]
	d.mu.RUnlock()
	return h, ok
}

// Remove deletes the entry for id.  Removing an absent id is a no-op.
func (d *Directory) Remove(id string) {
	d.mu.Lock()
	delete(d.entries, id)
	d.mu.Unlock()
}

// Len returns the number of reachable sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// ── Username Index ───────────────────────────────────────────────────

// UsernameIndex maps a display name to the set of session ids that
// registered it.  Several sessions may share a name.  Entries are never
// pruned, so ids of disconnected sessions remain listed.
type UsernameIndex struct {
	mu    sync.RWMutex
	names map[string]map[string]struct{}
}

// NewUsernameIndex returns an empty UsernameIndex.
func NewUsernameIndex() *UsernameIndex {
	return &UsernameIndex{names: make(map[string]map[string]struct{})}
}

// AddMembership records that id uses name.  Repeated calls are no-ops.
func (u *UsernameIndex) AddMembership(name, id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	members, ok := u.names[name]
	if !ok {
		members = make(map[string]struct{})
		u.names[name] = members
	}
	members[id] = struct{}{}
}

// LookupMembers returns a copy of the ids registered under name, in no
// particular order.  Unknown names yield an empty slice.
func (u *UsernameIndex) LookupMembers(name string) []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	members := u.names[name]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// Len returns the number of distinct names.
func (u *UsernameIndex) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.names)
}
