// Package whisperservice implements anonymous location whispers inside the
// community-signals context.
//
// Anyone may post; nothing identifies the author. Whispers stay hidden from
// non-admins until an admin approves them, and rejection deletes the row.
package whisperservice
