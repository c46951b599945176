// Package models owns the typed daemon records and their bidirectional
// mapping to protocol element trees, one mapping per message kind.
//
// Every field is optional: an absent element means an unknown field,
// never an error. The original daemon population is heterogeneous and
// old clients must keep working against new daemons.
package models
