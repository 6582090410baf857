// Package logs reads the filmloc log file for the `filmloc logs` command.
//
// Last returns the trailing lines with the offset of the end of file, and
// Follow streams lines appended after an offset until the context ends.
package logs
