package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role is a user's position in the school.
type Role string

const (
	RolePrincipal     Role = "principal"
	RoleVicePrincipal Role = "vice-principal"
	RoleTeacher       Role = "teacher"
)

// KnownRole reports whether r is one of the defined roles.
func KnownRole(r Role) bool {
	return r == RolePrincipal || r == RoleVicePrincipal || r == RoleTeacher
}

// AdminRole reports whether r may access the admin reporting view.
func AdminRole(r Role) bool {
	return r == RolePrincipal || r == RoleVicePrincipal
}

// User is the current session identity. It exists only for the lifetime of
// the process; nothing is persisted.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// State is the holder's authentication state.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

var (
	// ErrMissingCredentials is the generic auth failure for absent fields.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrAuthInProgress rejects a second login/signup while one is running.
	ErrAuthInProgress = errors.New("authentication already in progress")
)

// Holder owns the session identity and its state transitions. There is no
// real credential verification: once the required fields are present the
// attempt succeeds after an artificial delay standing in for a future
// network call.
type Holder struct {
	mu    sync.Mutex
	state State
	user  User
	delay time.Duration
	now   func() time.Time
}

// NewHolder creates an anonymous holder with the given simulated auth delay.
func NewHolder(delay time.Duration) *Holder {
	return &Holder{delay: delay, now: time.Now}
}

// Login authenticates by email. The fabricated user takes its display name
// from the email's local part and the teacher role, mirroring what a real
// directory lookup would later return.
func (h *Holder) Login(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}
	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	return h.authenticate(ctx, User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Role:  RoleTeacher,
	})
}

// Signup registers and authenticates in one step.
func (h *Holder) Signup(ctx context.Context, name, email, password string, role Role) (User, error) {
	if name == "" || email == "" || password == "" || !KnownRole(role) {
		return User{}, ErrMissingCredentials
	}
	return h.authenticate(ctx, User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Role:  role,
	})
}

func (h *Holder) authenticate(ctx context.Context, user User) (User, error) {
	h.mu.Lock()
	if h.state == StateAuthenticating {
		h.mu.Unlock()
		return User{}, ErrAuthInProgress
	}
	h.state = StateAuthenticating
	h.mu.Unlock()

	if h.delay > 0 {
		timer := time.NewTimer(h.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			h.mu.Lock()
			h.state = StateAnonymous
			h.mu.Unlock()
			return User{}, ctx.Err()
		}
	}

	h.mu.Lock()
	h.state = StateAuthenticated
	h.user = user
	h.mu.Unlock()
	return user, nil
}

// Logout clears the identity and returns to anonymous. Logging out while
// anonymous is a no-op.
func (h *Holder) Logout() {
	h.mu.Lock()
	h.state = StateAnonymous
	h.user = User{}
	h.mu.Unlock()
}

// Current returns the authenticated user, if any.
func (h *Holder) Current() (User, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateAuthenticated {
		return User{}, false
	}
	return h.user, true
}

// State returns the holder's current state.
func (h *Holder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}
