// Package eventservice implements the community event store inside the
// community-events context.
//
// It owns event submission and admin approval, RSVP admission against a
// per-event seat capacity, post-event feedback and the admin analytics view.
// Admissions are a single read-check-write per event in every adapter, and
// each state change appends its domain event to the outbox in the same step.
package eventservice
