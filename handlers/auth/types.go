package auth

// Constants for error messages
const (
	ErrInvalidCredentials  = "Invalid credentials"
	ErrAccountBlocked      = "Your account has been deactivated"
	ErrTooManyAttempts     = "Too many failed login attempts, please try again later"
	ErrEmailInUse          = "Email already in use"
	ErrHashPasswordFailed  = "Failed to hash password"
	ErrUserCreateFailed    = "Failed to create user"
	ErrTokenGenerateFailed = "Failed to generate token"
	ErrNoTokenProvided     = "No token provided"
	ErrInvalidExpiredToken = "Invalid or expired token"
	ErrUserNotFound        = "User not found"
	ErrNotOrganizer        = "This account cannot access the organizer portal"
	ErrNotParticipant      = "This account cannot access the participant portal"
	ErrResetTokenInvalid   = "Invalid or expired reset token"
	ErrResetTokenExpired   = "Reset token has expired"
	MsgLogoutSuccess       = "Successfully logged out"
	MsgResetLinkSent       = "If the email exists, a reset link will be sent"
	MsgPasswordReset       = "Password has been reset successfully"
)

// LoginRequest is used by the organizer portal, identifier is a username or an email
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ParticipantLoginRequest is used by contingent managers
type ParticipantLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a participant account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// AuthResponse is returned on a successful login or registration
type AuthResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}
