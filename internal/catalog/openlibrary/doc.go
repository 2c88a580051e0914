// Package openlibrary provides the OpenLibrary client behind MediaMinder's
// book catalog: free-text search, publication-year search, work details (for
// subjects) and subject listings. No API key is required.
package openlibrary
