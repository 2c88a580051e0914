// Package media holds the vocabulary shared by every MediaMinder component:
// media types, tracking statuses, and the TrackedItem record.
//
// The backend persistence API calls TV shows "series"; Type.Wire and
// TypeFromWire translate at that boundary so the rest of the code only sees
// TypeTVShow.
package media
