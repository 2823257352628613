package users

// Constants for error messages
const (
	ErrUserNotFound        = "User not found"
	ErrFailedToGetUsers    = "Failed to get users"
	ErrFailedToCreateUser  = "Failed to create user"
	ErrFailedToUpdateUser  = "Failed to update user"
	ErrFailedToDeleteUsers = "Failed to delete users"
	ErrEmailInUse          = "Email already in use"
	ErrUsernameInUse       = "Username already in use"
	ErrCannotModifySelf    = "You cannot perform this action on your own account"
	ErrUserOwnsContingent  = "User owns a contingent and cannot be deleted"
	ErrInvalidRole         = "Invalid role"
	ErrWrongPassword       = "Old password is incorrect"
	ErrHashPasswordFailed  = "Failed to hash password"
	ErrFailedToParseFile   = "Failed to parse XLSX file"
	ErrMissingColumns      = "The sheet must have name, email and role columns"
	MsgPasswordUpdated     = "Password updated successfully"
)

// CreateUserRequest creates an organizer or participant account
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required,oneof=ADMIN OPERATOR VIEWER PARTICIPANTS_MANAGER JUDGE PARTICIPANT"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"omitempty,min=8"`
}

// UpdateUserRequest updates another account, empty fields are left untouched
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN OPERATOR VIEWER PARTICIPANTS_MANAGER JUDGE PARTICIPANT"`
}

type BulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// ProfileUpdate is the payload for the current user's own profile
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type PasswordUpdate struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ImportResult summarises an XLSX import
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
