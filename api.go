package silo

import "iter"

// Relations is the membership contract collaborators consume: which
// components each entity currently holds.
type Relations interface {
	AddComponent(*Component, Entity) error
	RemoveComponent(*Component, Entity) error
	HasComponent(*Component, Entity) bool
	Alive(Entity) bool
}

// Lockable defers mutations while locked.
type Lockable interface {
	Locked() bool
	Lock()
	Unlock()
}

type iCursor interface {
	Entities() iter.Seq2[int, Entity]
	Next() bool
}

var (
	_ Relations = &World{}
	_ Lockable  = &World{}
	_ iCursor   = &Cursor{}
)
