package domain

import "time"

// DefaultUserName is stored when sign-up omits a name.
const DefaultUserName = "No-Name"

type User struct {
	ID        int32     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdate carries the mutable user fields; nil means unchanged.
type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil
}
