// Package tracking holds the signed-in user's tracked media list.
//
// The Store is the only owner of that list. Mutations are sent to the
// persistence API first; the local list changes only after the server
// accepted them and always takes the server's timestamps. Failed mutations
// leave the list untouched and record a short message for display. Lookups
// accept local ids, compound {type}_{id} ids and bare catalog ids.
package tracking
