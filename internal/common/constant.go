// Package common contains shared constants and sentinel errors used across
// the task API components.
package common

const (
	// AuthTokenHeaderName is the response header carrying a freshly issued
	// token. Requests may send it back under the same name.
	AuthTokenHeaderName = "auth-token"

	// AuthorizationHeaderName carries "Bearer <token>" credentials.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the authorization scheme accepted by the API.
	BearerScheme = "Bearer"
)
