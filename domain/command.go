package domain

// DeleteUserCommand is the transient input of the removal workflow.
// UserCode identifies the acting user, UserID the removal target.
type DeleteUserCommand struct {
	UserCode string
	UserID   uint64
}
