// Package protocol owns the GUI RPC wire contract primitives.
//
// Ownership boundary:
// - failure taxonomy shared by every layer
// - element-tree text helpers
// - reply classification entry points
package protocol
