package models

//nolint:gosec // storage key names, not credentials
const (
	AccessTokenKey  = "ldap_access_token"
	RefreshTokenKey = "ldap_refresh_token"

	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	RequestIDHeader     = "X-Request-ID"
	ContentTypeHeader   = "Content-Type"
	ContentTypeJSON     = "application/json"

	CourseStatusCurrent = "current"
	CourseStatusPast    = "past"
	CourseStatusFuture  = "future"
)
