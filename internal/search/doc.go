// Package search holds catalog search helpers for interactive front ends:
// query validation and a Debouncer that starts a search only after input has
// been quiet for a short delay.
package search
