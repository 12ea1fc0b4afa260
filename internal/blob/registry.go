// Package blob issues session-local content references for uploaded files.
//
// A reference is only meaningful inside the process that issued it. References
// persisted by the catalog outlive the session and resolve to ErrDangling
// after a restart.
package blob

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const scheme = "blob:studyhub/"

var (
	// ErrDangling is returned for references issued by another session or never issued.
	ErrDangling = errors.New("content reference is no longer available")
	// ErrMalformed is returned for strings that are not content references.
	ErrMalformed = errors.New("not a content reference")
)

// Registry maps references to local file paths for one session.
type Registry struct {
	session string

	mu      sync.RWMutex
	entries map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		session: uuid.NewString(),
		entries: map[string]string{},
	}
}

// Session identifies the issuing process.
func (r *Registry) Session() string {
	return r.session
}

// Issue registers path and returns a fresh reference for it.
func (r *Registry) Issue(path string) string {
	ref := fmt.Sprintf("%s%s/%s", scheme, r.session, uuid.NewString())
	r.mu.Lock()
	r.entries[ref] = path
	r.mu.Unlock()
	return ref
}

// Resolve returns the path behind ref.
func (r *Registry) Resolve(ref string) (string, error) {
	if !strings.HasPrefix(ref, scheme) {
		return "", fmt.Errorf("%w: %q", ErrMalformed, ref)
	}
	r.mu.RLock()
	path, ok := r.entries[ref]
	r.mu.RUnlock()
	if !ok {
		return "", ErrDangling
	}
	return path, nil
}

// Revoke forgets ref. Unknown references are ignored.
func (r *Registry) Revoke(ref string) {
	r.mu.Lock()
	delete(r.entries, ref)
	r.mu.Unlock()
}

// Live reports whether ref resolves in this session.
func (r *Registry) Live(ref string) bool {
	_, err := r.Resolve(ref)
	return err == nil
}
