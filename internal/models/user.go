package models

// User is a credential store record. Password holds the stored credential
// and is never part of an API response.
type User struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	Username  string  `json:"username" gorm:"uniqueIndex;not null;size:20"`
	Password  string  `json:"password" gorm:"not null"`
	Email     string  `json:"email" gorm:"not null"`
	FirstName string  `json:"firstName" gorm:"not null;size:30"`
	LastName  string  `json:"lastName" gorm:"not null;size:30"`
	Avatar    *string `json:"avatar"`
}

// Clone returns a deep copy so callers can mutate a record without touching
// a cached or shared value.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Avatar != nil {
		a := *u.Avatar
		c.Avatar = &a
	}
	return &c
}

// AvatarRef returns the avatar reference or "" when none is set.
func (u *User) AvatarRef() string {
	if u.Avatar == nil {
		return ""
	}
	return *u.Avatar
}
