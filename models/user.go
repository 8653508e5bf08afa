package models

import "github.com/google/uuid"

// Role is the closed set of access levels. Anything read from storage goes
// through ParseRole so an unrecognized value can never reach an
// authorization check.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a stored role string onto the enumeration. Unknown values
// degrade to RoleUser (least privilege).
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	default:
		return RoleUser
	}
}

type User struct {
	ID           uuid.UUID `db:"id"`
	Identifier   string    `db:"iduser"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Surname      string    `db:"surname"`
	Role         Role      `db:"role"`
	Admitted     bool      `db:"admitted"`
}
