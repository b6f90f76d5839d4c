package models

import "strings"

type Role string

// UserRole constants
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PrimaryAdminUsername is the account that can never be deleted
const PrimaryAdminUsername = "admin"

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a user record of the user file
type User struct {
	Username     string `json:"username"`
	FullName     string `json:"full_name,omitempty"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"hashed_password"`
	Role         Role   `json:"role"`
	Disabled     bool   `json:"disabled"`
}

// ListItem returns the public view of the user without password hash
func (u *User) ListItem() UserListItem {
	return UserListItem{
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		Disabled: u.Disabled,
	}
}

// UserListItem represents a user in the admin users list
type UserListItem struct {
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
	Disabled bool   `json:"disabled"`
}

// UserUpdate holds optional changes applied to a stored user.
// Nil fields are left untouched, an empty NewPassword is ignored as well.
type UserUpdate struct {
	NewPassword *string
	NewRole     *Role
	Disabled    *bool
}

// NormalizeUsername returns the key used for case-insensitive username comparison
func NormalizeUsername(username string) string {
	return strings.ToLower(username)
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        Role   `json:"role"`
}

// CreateUserRequest represents a request to create a user by admin
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=64,excludesall=/"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=admin user"`
	FullName string `json:"full_name,omitempty" validate:"max=128"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Disabled bool   `json:"disabled,omitempty"`
}

// UpdateUserRequest represents a partial user update by admin
type UpdateUserRequest struct {
	NewPassword *string `json:"new_password,omitempty"`
	NewRole     *Role   `json:"new_role,omitempty" validate:"omitempty,oneof=admin user"`
	Disabled    *bool   `json:"disabled,omitempty"`
}
