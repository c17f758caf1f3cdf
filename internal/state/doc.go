// Package state implements the backend protocol directly against an
// in-memory file map owned by the caller's session state.
//
// Nothing here touches a real filesystem or an execute primitive: every
// operation reads or mutates the map, and visibility/durability are
// entirely inherited from whatever mechanism snapshots that map. Entries
// are created by write, mutated in place by edit, and never deleted by
// this layer.
//
// Uploads are rejected by design so that all mutation flows through
// write/edit and the session snapshot stays the single source of truth.
package state
