package domain

// Session is the proof of an authenticated principal, resolved by the token
// middleware before any handler runs. It is bound to exactly one user.
type Session struct {
	UserID   string
	Username string
}
