package auth

const (
	ScopeOpenID   = "openid"
	ScopeProfile  = "profile"
	ScopeEmail    = "email"
	ScopeSWFRead  = "swf:read"
	ScopeSWFWrite = "swf:write"
)

// AllScopes is the full set of scopes requested by interactive clients
var AllScopes = []string{
	ScopeOpenID,
	ScopeProfile,
	ScopeEmail,
	ScopeSWFRead,
	ScopeSWFWrite,
}
