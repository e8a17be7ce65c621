package session

import "sync"

// Directory tracks every identity fabricated this session so the admin
// report can join records back to their owners. Like the holder, it is
// process-lifetime state only.
type Directory struct {
	mu    sync.Mutex
	users map[string]User
	order []string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{users: make(map[string]User)}
}

// Add registers a user, keeping first-seen order. Re-adding an id updates
// the stored identity in place.
func (d *Directory) Add(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[u.ID]; !ok {
		d.order = append(d.order, u.ID)
	}
	d.users[u.ID] = u
}

// List returns all known users in first-seen order.
func (d *Directory) List() []User {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]User, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.users[id])
	}
	return out
}

// Len returns the number of known users.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}
