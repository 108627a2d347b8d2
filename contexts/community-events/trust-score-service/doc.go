// Package trustscoreservice derives organizer trust scores.
//
// The service owns no storage. It reads organizer activity (events, RSVP
// history and ratings) through ActivitySource and recomputes the score on
// every call.
package trustscoreservice
