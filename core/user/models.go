package user

import (
	"fmt"

	"github.com/trezcool/catalog/core"
)

type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Roles lists every role in load order.
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole maps a role name to its Role.
func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if !r.IsValid() {
		return "", core.NewValidationError(
			fmt.Errorf("invalid role %q", s),
			core.FieldError{Field: "role", Error: "must be one of admin, teacher, student"},
		)
	}
	return r, nil
}

// User is shared by every role. IDs are unique within a role's collection only.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"-"` // plaintext
	Role     Role   `json:"role"`
}

// CheckPassword compares the stored plaintext credential.
func (u *User) CheckPassword(pwd string) bool {
	return u.Password == pwd
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

func (u User) String() string {
	return fmt.Sprintf("%s %d %s (%s)", u.Role, u.ID, u.Name, u.Username)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	ID       int    `json:"id" validate:"gte=0"`
	Role     Role   `json:"role" validate:"required,oneof=admin teacher student"`
	Name     string `json:"name" validate:"notblank"`
	Username string `json:"username" validate:"notblank,alphanum_"`
	Password string `json:"password" validate:"notblank"`
}

func (nu *NewUser) Validate() error {
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username)
	return core.ValidateStruct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty fields keep their current value.
type UpdateUser struct {
	Name     string `json:"name"`
	Username string `json:"username" validate:"omitempty,alphanum_"`
	Password string `json:"password"`
}

func (uu *UpdateUser) Validate() error {
	uu.Name = core.CleanString(uu.Name)
	uu.Username = core.CleanString(uu.Username)
	return core.ValidateStruct(uu)
}
