package models

// GuestScopeKey prefixes every guest scope key. It is reserved as a username.
const GuestScopeKey = "guest"

// Scope selects which deck collection a caller works on. Guest scopes are
// kept in memory only.
type Scope struct {
	Key        string `json:"key"`
	Username   string `json:"username,omitempty"`
	Persistent bool   `json:"persistent"`
}

// GuestScopeFor returns a guest scope private to one visitor. The key can
// never match a user's key since those hold no colons.
func GuestScopeFor(id string) Scope {
	return Scope{Key: GuestScopeKey + ":" + id}
}

// IsGuest reports whether s is a guest scope.
func (s Scope) IsGuest() bool {
	return !s.Persistent
}
