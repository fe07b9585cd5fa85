package constants

// ContextKey is the type used for values stored on request contexts
type ContextKey string

const CtxKeyRequestID ContextKey = "request_id"

// Gin context keys set by the auth middleware
const (
	GinKeyUser      = "current_user"
	GinKeyUserEmail = "user_email"
)

// HTTP header carrying the request correlation id
const HeaderRequestID = "X-Request-ID"
