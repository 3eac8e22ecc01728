// Package mmap maps centroid files read-only into memory.
//
// On Unix platforms files are mapped with mmap(2) through golang.org/x/sys/unix.
// Elsewhere the file is read into an ordinary byte slice behind the same API.
package mmap
