// Package identityservice is the identity context of Community Pulse.
//
// It owns user accounts (signup/login) and resolves bearer tokens into the
// caller identity every other service receives as an explicit parameter:
// anonymous, or an authenticated user with a stable id and an admin flag.
// Token issuance is deliberately small: HS256 JWTs carrying the user id.
package identityservice
