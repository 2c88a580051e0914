// Package detailcache keeps catalog genre and subject lists in a local SQLite
// database so preference analysis does not refetch every tracked item on each
// run. Source wraps the catalog lookups with a freshness window; Prune and
// Clear back the cache maintenance commands.
package detailcache
