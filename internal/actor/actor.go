// Package actor models who is performing a request: a registered user or an
// anonymous guest whose state lives in a session.
package actor

import "strconv"

// LikedPostsKey is the session key holding the post IDs a guest has liked.
const LikedPostsKey = "liked_posts"

// Session is the per-visitor key-value store backing anonymous state.
// Set marks the session modified so it is persisted when the request ends.
type Session interface {
	Get(key string) ([]uint, bool)
	Set(key string, ids []uint)
}

// Actor performs engagement operations.
type Actor interface {
	IsIdentified() bool
	ID() uint
	DisplayName() string
}

// SessionBound is implemented by actors carrying a session handle.
type SessionBound interface {
	Session() Session
}

// User is an authenticated account.
type User struct {
	UserID   uint
	Username string
}

func (u User) IsIdentified() bool { return u.UserID != 0 }
func (u User) ID() uint { return u.UserID }

func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return "user-" + strconv.FormatUint(uint64(u.UserID), 10)
}

// Guest is an anonymous visitor. Sess may be nil when no session could be established.
type Guest struct {
	Sess Session
}

func (Guest) IsIdentified() bool { return false }
func (Guest) ID() uint { return 0 }
func (Guest) DisplayName() string { return "guest" }
func (g Guest) Session() Session { return g.Sess }

// Anonymous is a guest without a session.
var Anonymous Actor = Guest{}

// SessionOf returns the actor's session, if it has one.
func SessionOf(a Actor) (Session, bool) {
	sb, ok := a.(SessionBound)
	if !ok {
		return nil, false
	}
	s := sb.Session()
	return s, s != nil
}

// Contains reports whether id is in ids.
func Contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle adds id to ids when absent and removes it when present.
// It returns the new list and whether id is now present.
func Toggle(ids []uint, id uint) ([]uint, bool) {
	out := make([]uint, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if found {
		return out, false
	}
	return append(out, id), true
}
