// Package matching scores lost reports against found reports.
//
// Similarity compares two free-text fields by the overlap of their word
// sets. FindMatches combines the name, location and description scores of
// every (lost, found) pair with the weights of a Policy, drops pairs below
// the policy threshold and ranks the rest best first. Both are pure
// functions of their arguments: nothing is cached between calls.
package matching
