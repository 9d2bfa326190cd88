// Package domain contains core concepts of the room system.
// This file defines the Room aggregate and its membership invariants.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"errors"
	"time"
)

var (
	ErrRoomClosed   = errors.New("room is closed")
	ErrUserNotFound = errors.New("user does not belong to the room")
)

type RoomCode string

// Room is the membership aggregate. Users keep insertion order for display;
// all membership mutations go through the aggregate so the closed-room
// invariant holds.
type Room struct {
	Code     RoomCode
	Name     string
	ClosedOn *time.Time
	Users    []User

	// Version is a write fence maintained by the repository.
	// The aggregate never touches it.
	Version uint64
}

// IsClosed reports whether the room has been closed.
// A closed room accepts no membership mutation.
func (r *Room) IsClosed() bool {
	return r.ClosedOn != nil
}

// UserByCode finds the user owning the given user code.
// Rooms are small, a linear scan is fine here.
func (r *Room) UserByCode(code string) (User, bool) {
	for _, u := range r.Users {
		if u.UserCode == code {
			return u, true
		}
	}
	return User{}, false
}

// UserByID finds the user with the given numeric id.
func (r *Room) UserByID(id uint64) (User, bool) {
	for _, u := range r.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// DeleteUser removes exactly one user from the room. The preconditions are
// re-checked here even though the workflow validates them first: the
// aggregate must not trust its callers.
func (r *Room) DeleteUser(id uint64) error {
	if r.IsClosed() {
		return ErrRoomClosed
	}
	for i, u := range r.Users {
		if u.ID == id {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			return nil
		}
	}
	return ErrUserNotFound
}
