package types

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

type User struct {
	ID                 string     `db:"id" json:"id"`
	Email              string     `db:"email" json:"email"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	Role               Role       `db:"role" json:"role"`
	MustChangePassword bool       `db:"must_change_password" json:"mustChangePassword"`
	IsActive           bool       `db:"is_active" json:"isActive"`
	DeletedAt          *time.Time `db:"deleted_at" json:"deletedAt"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}
