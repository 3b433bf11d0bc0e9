package constants

// ContextKeyUserID is the session and gin context key for the acting user.
const ContextKeyUserID = "user_id"

// Pagination bounds
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 8
