// Package protocol owns the turn-taking contract: the two wire tokens and
// the per-role state machine that alternates them for a fixed round count.
package protocol
