// Package v1 carries the caller identity that the transport layer resolves
// once per request and threads explicitly into every engine operation.
package v1

import "strings"

// Caller is either anonymous (empty UserID) or an authenticated user.
type Caller struct {
	UserID  string
	IsAdmin bool
}

func Anonymous() Caller {
	return Caller{}
}

func User(userID string, isAdmin bool) Caller {
	return Caller{UserID: strings.TrimSpace(userID), IsAdmin: isAdmin}
}

func (c Caller) IsAnonymous() bool {
	return strings.TrimSpace(c.UserID) == ""
}

// Admin reports whether the caller is an authenticated administrator.
func (c Caller) Admin() bool {
	return !c.IsAnonymous() && c.IsAdmin
}
