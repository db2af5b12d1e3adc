package account

import "github.com/fundwit/go-commons/types"

type User struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name  string `json:"name"`
	Email string `json:"email" gorm:"unique_index:email_unique"`

	// bcrypt digest, never serialized
	Secret string `json:"-"`

	Role string `json:"role"`
}

// UserInfo is the password free view of a User.
type UserInfo struct {
	ID    types.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  string   `json:"role"`
}

type UserRegistration struct {
	Name     string `json:"name" binding:"required,lte=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,gte=6,lte=72"`

	// honored only when the acting session holds the admin role
	Role string `json:"role"`
}

// UserUpdating empty fields are left untouched.
type UserUpdating struct {
	Name     string `json:"name" binding:"omitempty,lte=64"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,gte=6,lte=72"`
	Role     string `json:"role"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
