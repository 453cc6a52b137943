// ABOUTME: Read-only session view derived from the credential store
// ABOUTME: Backs the navigation guard and any UI showing the signed-in user

package session

// View is the projection consumed by guards and presentation. It is
// recomputed from the store on every read and must never be cached
// across a change notification.
type View struct {
	Authenticated bool
	Username      string
}

// Reader derives a View from a Store.
type Reader struct {
	store *Store
}

func NewReader(store *Store) *Reader {
	return &Reader{store: store}
}

// Read returns the current session view. Authenticated requires both
// tokens and a structurally valid identity; anything less reads as
// signed out.
func (r *Reader) Read() View {
	creds := r.store.Read()
	if creds == nil {
		return View{}
	}

	return View{
		Authenticated: true,
		Username:      creds.Username,
	}
}

// CanEnter reports whether a protected surface may be entered. It
// trusts local state only; an expired token is caught by the refresh
// path on the first request, not here.
func (r *Reader) CanEnter() bool {
	return r.Read().Authenticated
}
