// Package pollservice implements community polls inside the
// community-signals context.
//
// Admins create and close polls; authenticated users hold at most one
// counted vote per poll and may move it to another option while the poll is
// open. Tallies live on the poll and always equal the number of vote records.
package pollservice
