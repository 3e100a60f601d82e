// Package history provides an in-memory, navigable URL history that
// implements routequery.Store.
//
// Each Entry holds a path and a full query document. Commit and Navigate with
// routequery.ModePush append an entry (dropping any forward entries), while
// routequery.ModeReplace rewrites the current one. Back and Forward move
// between entries.
//
// Change notification:
//
//	Every mutation diffs the previous and the new query and calls the
//	subscribers of each changed field, synchronously, after the mutation and
//	outside the store lock. Subscriber errors are joined and returned by the
//	mutating call.
package history
