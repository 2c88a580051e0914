// Package backend is the client for the MediaMinder persistence API.
//
// The API stores one record per tracked item and speaks its own vocabulary
// (series for TV shows, snake_case fields, naive UTC timestamps). Records
// convert to media.TrackedItem through Record.ToItem, and create/patch
// payloads are validated before they leave the process.
package backend
