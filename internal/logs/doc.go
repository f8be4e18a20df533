// Package logs reads the dubsync log file for the "dubsync logs" command.
//
// Tail returns the last lines with bounded memory, and Follow streams lines
// appended afterwards until its context ends.
package logs
