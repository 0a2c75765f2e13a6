package models

// Session is the persisted authentication state for one browser session:
// the opaque upstream bearer token plus the cached user record.
//
// Token and User are set and cleared together. A session missing either
// half is treated as unauthenticated by every consumer.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Authenticated reports whether the session holds both halves of the
// identity. A token without a user means the profile still needs to be
// fetched (or the entry is damaged) and must not be treated as logged in.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// NeedsProfile reports whether the session has a token but no cached user
// record, i.e. it was rehydrated from storage and the profile fetch has
// not completed yet.
func (s *Session) NeedsProfile() bool {
	return s != nil && s.Token != "" && s.User == nil
}
