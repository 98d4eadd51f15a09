package silo

import "iter"

// Cursor walks the entities matching a query in one world. The world stays
// locked from the first step until the walk ends or Reset is called, so
// mutations made along the way must use the Enqueue variants.
type Cursor struct {
	query *Query
	world *World

	matched     []Entity
	entityIndex int

	initialized bool
}

func newCursor(query *Query, world *World) *Cursor {
	return &Cursor{
		query: query,
		world: world,
	}
}

func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	if c.entityIndex < len(c.matched) {
		c.entityIndex++
		return true
	}
	c.Reset()
	return false
}

// Entity returns the entity at the cursor position.
func (c *Cursor) Entity() Entity {
	return c.matched[c.entityIndex-1]
}

func (c *Cursor) Entities() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		c.initialize()
		defer c.Reset()
		for c.entityIndex < len(c.matched) {
			e := c.matched[c.entityIndex]
			c.entityIndex++
			if !yield(c.entityIndex-1, e) {
				return
			}
		}
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	// The cache cannot change while the world is locked, so its dense list is
	// safe to walk in place.
	c.matched = c.world.mustCache(c.query).dense
	c.entityIndex = 0
	c.world.Lock()
	c.initialized = true
}

// Reset ends the walk and releases the world, applying queued work.
func (c *Cursor) Reset() {
	if !c.initialized {
		return
	}
	c.entityIndex = 0
	c.matched = nil
	c.initialized = false
	c.world.Unlock()
}

func (c *Cursor) RemainingInQuery() int {
	return len(c.matched) - c.entityIndex
}

func (c *Cursor) TotalMatched() int {
	if c.initialized {
		return len(c.matched)
	}
	return c.query.Count(c.world)
}
