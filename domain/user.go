package domain

// User is a member of a room. The UserCode is a per-room-unique opaque token:
// whoever holds the code acts as that user, there is no password. Codes are
// never reused within a room's lifetime.
type User struct {
	ID        uint64
	UserCode  string
	FirstName string
	LastName  string
	IsAdmin   bool
}
