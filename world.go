package silo

import (
	"fmt"
	"iter"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/google/uuid"
)

// MaxComponents is the number of distinct components one world can track. It
// follows the mask width selected by build tag (64 by default, m256/m512/m1024).
const MaxComponents = mask.MaxBits

// World is one isolated ECS instance: its entities, the components each
// entity currently has, the query caches evaluated against them and the
// reactive subscriptions attached to it.
type World struct {
	id uuid.UUID

	bits       map[table.ElementTypeID]uint32
	components []*Component

	masks  []mask.Mask
	alive  []bool
	dense  []Entity
	sparse []int32
	free   []Entity
	next   Entity

	caches   []*queryCache
	byQuery  map[*Query]*queryCache
	reactive map[*ReactiveQuery]*subscription

	locks    int
	flushing bool
	opQueue  opQueue
}

func newWorld() *World {
	w := &World{id: uuid.New()}
	w.reset()
	return w
}

func (w *World) reset() {
	w.bits = make(map[table.ElementTypeID]uint32)
	w.components = nil
	w.masks = nil
	w.alive = nil
	w.dense = nil
	w.sparse = nil
	w.free = nil
	w.next = 0
	w.caches = nil
	w.byQuery = make(map[*Query]*queryCache)
	w.reactive = make(map[*ReactiveQuery]*subscription)
	w.locks = 0
	w.opQueue = newOpQueue()
}

func (w *World) ID() uuid.UUID {
	return w.id
}

func (w *World) String() string {
	return "world(" + w.id.String() + ")"
}

// NewEntity creates one entity holding the given components.
func (w *World) NewEntity(components ...*Component) (Entity, error) {
	entities, err := w.NewEntities(1, components...)
	if err != nil {
		return 0, err
	}
	return entities[0], nil
}

// NewEntities creates n entities, each holding the given components. Ids are
// handed out from the recycle queue first, oldest release first.
func (w *World) NewEntities(n int, components ...*Component) ([]Entity, error) {
	if w.Locked() {
		return nil, LockedWorldError{}
	}
	var entityMask mask.Mask
	for _, c := range components {
		bit, err := w.bitFor(c)
		if err != nil {
			return nil, err
		}
		entityMask.Mark(bit)
	}

	if n <= 0 {
		return []Entity{}, nil
	}

	fresh := max(0, n-len(w.free))
	if int(w.next)+fresh > Config.MaxElements() {
		return nil, CapacityExceededError{Type: EID, Requested: int(w.next) + fresh, Ceiling: Config.MaxElements()}
	}

	// Columns are grown before any id is handed out, so a failed create
	// leaves the world untouched.
	highest := -1
	for _, e := range w.free[:n-fresh] {
		highest = max(highest, int(e))
	}
	if fresh > 0 {
		highest = max(highest, int(w.next)+fresh-1)
	}
	for _, c := range components {
		if err := c.Grow(highest + 1); err != nil {
			return nil, fmt.Errorf("failed to grow %s for new entities: %w", c, err)
		}
	}

	entities := make([]Entity, n)
	for i := range entities {
		entities[i] = w.allocate()
		w.masks[entities[i]] = entityMask
	}

	// Work queued by observers runs once the whole batch is in the caches.
	w.Lock()
	for _, e := range entities {
		w.transition(e, entityMask, true)
	}
	w.Unlock()
	return entities, nil
}

func (w *World) allocate() Entity {
	var e Entity
	if len(w.free) > 0 {
		e = w.free[0]
		w.free = w.free[1:]
	} else {
		e = w.next
		w.next++
		w.masks = append(w.masks, mask.Mask{})
		w.alive = append(w.alive, false)
		w.sparse = append(w.sparse, -1)
	}
	w.alive[e] = true
	w.sparse[e] = int32(len(w.dense))
	w.dense = append(w.dense, e)
	return e
}

// DestroyEntity removes e and every component it holds. Remove observers of
// every query e matched fire before the id is released for reuse.
func (w *World) DestroyEntity(e Entity) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	if !w.Alive(e) {
		return EntityNotFoundError{Entity: e}
	}
	w.masks[e] = mask.Mask{}
	w.alive[e] = false

	idx := w.sparse[e]
	last := w.dense[len(w.dense)-1]
	w.dense[idx] = last
	w.sparse[last] = idx
	w.dense = w.dense[:len(w.dense)-1]
	w.sparse[e] = -1

	w.Lock()
	w.transition(e, mask.Mask{}, false)
	w.free = append(w.free, e)
	w.Unlock()
	return nil
}

func (w *World) Alive(e Entity) bool {
	return int(e) < len(w.alive) && w.alive[e]
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.dense)
}

// Entities yields live entities in creation order, adjusted by swap removal.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range w.dense {
			if !yield(e) {
				return
			}
		}
	}
}

func (w *World) AddComponent(c *Component, e Entity) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	if !w.Alive(e) {
		return EntityNotFoundError{Entity: e}
	}
	bit, err := w.bitFor(c)
	if err != nil {
		return err
	}
	next := w.masks[e]
	if next.Contains(bit) {
		return ComponentExistsError{Component: c, Entity: e}
	}
	if err := c.Grow(int(e) + 1); err != nil {
		return fmt.Errorf("failed to grow %s: %w", c, err)
	}
	next.Mark(bit)
	w.masks[e] = next

	w.Lock()
	w.transition(e, next, true)
	w.Unlock()
	return nil
}

func (w *World) RemoveComponent(c *Component, e Entity) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	if !w.Alive(e) {
		return EntityNotFoundError{Entity: e}
	}
	bit, ok := w.bits[c.elem.ID()]
	if !ok || !w.masks[e].Contains(bit) {
		return ComponentNotFoundError{Component: c, Entity: e}
	}
	next := w.masks[e]
	next.Unmark(bit)
	w.masks[e] = next

	w.Lock()
	w.transition(e, next, true)
	w.Unlock()
	return nil
}

func (w *World) HasComponent(c *Component, e Entity) bool {
	if !w.Alive(e) {
		return false
	}
	bit, ok := w.bits[c.elem.ID()]
	return ok && w.masks[e].Contains(bit)
}

// Components returns the components e currently holds in registration order.
func (w *World) Components(e Entity) []*Component {
	return iter_util.Collect(w.componentsOf(e))
}

func (w *World) componentsOf(e Entity) iter.Seq[*Component] {
	return func(yield func(*Component) bool) {
		if !w.Alive(e) {
			return
		}
		for _, c := range w.components {
			if w.masks[e].Contains(w.bits[c.elem.ID()]) && !yield(c) {
				return
			}
		}
	}
}

// RowIndexFor returns the membership bit of c in this world, registering it on first use.
func (w *World) RowIndexFor(c *Component) (uint32, error) {
	return w.bitFor(c)
}

// bitFor hands out bits densely in first-use order, so a world only spends
// bits on the components it actually sees.
func (w *World) bitFor(c *Component) (uint32, error) {
	if bit, ok := w.bits[c.elem.ID()]; ok {
		return bit, nil
	}
	if len(w.components) >= MaxComponents {
		return 0, TooManyComponentsError{Component: c}
	}
	bit := uint32(len(w.components))
	w.bits[c.elem.ID()] = bit
	w.components = append(w.components, c)
	return bit, nil
}

// transition moves e between query caches after its mask changed to next and
// fires the observers of every cache it entered or left. Callers hold a lock
// so work observers enqueue is applied only after the whole mutation.
func (w *World) transition(e Entity, next mask.Mask, alive bool) {
	for _, qc := range w.caches {
		was := qc.has(e)
		now := alive && qc.matcher.match(next)
		switch {
		case now && !was:
			qc.insert(e)
			qc.notify(OnAdd, e)
		case was && !now:
			qc.remove(e)
			qc.notify(OnRemove, e)
		}
	}
}

// Destroy detaches every reactive query and observer attached to the world
// and drops all entities. The world can be reused afterwards.
func (w *World) Destroy() {
	for r, sub := range w.reactive {
		sub.detach()
		delete(r.worlds, w)
	}
	for _, qc := range w.caches {
		qc.listeners = [2][]*listener{}
	}
	Config.Logger().Debug("world destroyed",
		"world", w.String(),
		"entities", len(w.dense),
		"queries", len(w.caches),
	)
	w.reset()
}

func (w *World) Locked() bool {
	return w.locks > 0
}

// Lock defers mutations: while locked, direct mutation fails and the Enqueue
// variants queue their work. Locks nest.
func (w *World) Lock() {
	w.locks++
}

// Unlock releases one lock. Releasing the last one applies queued work.
func (w *World) Unlock() {
	if w.locks == 0 {
		return
	}
	w.locks--
	if w.locks > 0 || w.flushing {
		return
	}
	if err := w.processOperationQueue(); err != nil {
		panic(bark.AddTrace(err))
	}
}

// AddComponent adds c to e in w.
func AddComponent(w *World, c *Component, e Entity) error {
	return w.AddComponent(c, e)
}

// HasComponent reports whether e currently holds c in w.
func HasComponent(w *World, c *Component, e Entity) bool {
	return w.HasComponent(c, e)
}

// RemoveComponent removes c from e in w.
func RemoveComponent(w *World, c *Component, e Entity) error {
	return w.RemoveComponent(c, e)
}
