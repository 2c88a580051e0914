// Package catalog composes the book and video catalogs behind one contract.
//
// Items are a closed set of variants (Book, Movie, TVShow) dispatched with
// Match. The Service wraps the OpenLibrary and TMDB clients for search,
// detail lookups, recommendation candidates and recent releases, and Images
// resolves poster and cover URLs from whatever partial data an item carries.
package catalog
