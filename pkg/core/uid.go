package core

import "sync/atomic"

// UniqueID identifies an entity (an assembly, a texture) for the lifetime of the process.
// The zero value is never handed out.
type UniqueID uint64

var lastUniqueID atomic.Uint64

// NewUniqueID returns a fresh identifier. Safe for concurrent use.
func NewUniqueID() UniqueID {
	return UniqueID(lastUniqueID.Add(1))
}
