// Package util holds small parsing and display helpers shared by the
// server and backend packages.
package util
