// Package history holds the visible page of a user's stored analyses.
//
// A View never applies a delete before the backend confirms it. When the
// backend answers 404 the item stays listed and a refetch is scheduled to
// reconcile the page with the server. Completions that arrive after Close
// are dropped.
package history
