// Package cachefile stores a JSON snapshot on disk under a gofrs/flock lock
// so several mediaminder processes can share it. Writes go to a temp file
// that is renamed into place.
package cachefile
