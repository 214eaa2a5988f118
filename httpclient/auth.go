package httpclient

import (
	"encoding/base64"
)

// AuthKind identifies the active authentication scheme. The set is closed:
// headers are derived with an exhaustive switch at request time.
type AuthKind string

const (
	AuthNone   AuthKind = "none"
	AuthBearer AuthKind = "bearer"
	AuthAPIKey AuthKind = "api_key"
	AuthBasic  AuthKind = "basic"
)

// DefaultAPIKeyHeader is the header used for API key auth when none is given.
const DefaultAPIKeyHeader = "X-API-Key"

// Credentials carries the parameters for an auth scheme. Only the fields
// relevant to the chosen kind are read.
type Credentials struct {
	Token      string // bearer
	HeaderName string // api_key; defaults to DefaultAPIKeyHeader
	Key        string // api_key
	Username   string // basic
	Password   string // basic
}

// authScheme is the resolved, validated form of an AuthKind plus its
// credentials. A client holds exactly one; setting a new one replaces it.
type authScheme struct {
	kind  AuthKind
	creds Credentials
}

// newAuthScheme validates the kind and its credentials. Unrecognized kinds
// fail with an InvalidAuthKindError; recognized kinds with missing
// credentials fail with an InvalidRequestError.
func newAuthScheme(kind AuthKind, creds Credentials) (authScheme, error) {
	switch kind {
	case AuthNone:
		return authScheme{kind: AuthNone}, nil
	case AuthBearer:
		if creds.Token == "" {
			return authScheme{}, NewInvalidRequestError("bearer auth requires a token", "token")
		}
	case AuthAPIKey:
		if creds.Key == "" {
			return authScheme{}, NewInvalidRequestError("api_key auth requires a key", "key")
		}
		if creds.HeaderName == "" {
			creds.HeaderName = DefaultAPIKeyHeader
		}
	case AuthBasic:
		if creds.Username == "" || creds.Password == "" {
			return authScheme{}, NewInvalidRequestError("basic auth requires username and password", "username/password")
		}
	default:
		return authScheme{}, NewInvalidAuthKindError(string(kind))
	}
	return authScheme{kind: kind, creds: creds}, nil
}

// headers derives the auth headers for the scheme. The switch is
// exhaustive over the closed AuthKind set; AuthNone contributes nothing.
func (a authScheme) headers() map[string]string {
	switch a.kind {
	case AuthBearer:
		return map[string]string{"Authorization": "Bearer " + a.creds.Token}
	case AuthAPIKey:
		return map[string]string{a.creds.HeaderName: a.creds.Key}
	case AuthBasic:
		encoded := base64.StdEncoding.EncodeToString([]byte(a.creds.Username + ":" + a.creds.Password))
		return map[string]string{"Authorization": "Basic " + encoded}
	default:
		return nil
	}
}
