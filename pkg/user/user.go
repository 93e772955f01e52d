package user

// User identifies the chat user a message came from. Identity is supplied by
// the transport on every update; nothing about users is persisted.
type User struct {
	Id        int64
	Username  string
	FirstName string
}
