package models

import "time"

// Session is the server-side blob a session id points at.
type Session struct {
	UserID    string    `msgpack:"uid"`
	CreatedAt time.Time `msgpack:"created_at"`
}
