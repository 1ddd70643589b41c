package model

// Role is the permission kind carried by a RoleGrant.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleFranchisee Role = "franchisee"
	RoleDiner      Role = "diner"
)

// RoleGrant assigns a role to a user. ObjectID references a franchise for
// RoleFranchisee and is 0 otherwise. Object carries the franchise name on
// input; the store resolves it to ObjectID.
type RoleGrant struct {
	Role     Role   `json:"role" validate:"required,oneof=admin franchisee diner"`
	ObjectID int64  `json:"objectId,omitempty"`
	Object   string `json:"object,omitempty"`
}

// User is the stored identity as returned by every operation.
// There is deliberately no password field.
type User struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Roles []RoleGrant `json:"roles"`
}

// NewUser is the registration payload. Password is plaintext and is hashed
// before it reaches the store.
type NewUser struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Roles    []RoleGrant `json:"roles"`
}

// UserUpdate holds the fields of an update; nil fields are left untouched.
type UserUpdate struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return (u.Email == nil || *u.Email == "") && (u.Password == nil || *u.Password == "")
}
