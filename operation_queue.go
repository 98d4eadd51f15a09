package silo

import (
	"github.com/TheBitDrifter/bark"
	"github.com/rotisserie/eris"
)

type operation struct {
	typ      operationType
	amount   int
	comps    []*Component
	entity   Entity
	onCreate func([]Entity)
}

type operationType int

const (
	opCreate operationType = iota
	opDestroy
	opAddComponent
	opRemoveComponent
)

func (t operationType) String() string {
	switch t {
	case opCreate:
		return "create"
	case opDestroy:
		return "destroy"
	case opAddComponent:
		return "add"
	case opRemoveComponent:
		return "remove"
	}
	return "unknown"
}

type opQueue struct {
	createOps      []operation
	componentOps   []operation
	destroyOps     []operation
	pendingDestroy map[Entity]struct{}
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[Entity]struct{}),
	}
}

func (q *opQueue) empty() bool {
	return len(q.createOps) == 0 &&
		len(q.componentOps) == 0 &&
		len(q.destroyOps) == 0
}

// take hands the queued work to the caller and leaves the queue empty, so
// operations enqueued while it is applied land in a fresh batch.
func (q *opQueue) take() opQueue {
	batch := *q
	*q = newOpQueue()
	return batch
}

// processOperationQueue applies queued work in batches until none is left:
// creates first, then component changes, then destroys. Component changes
// that no longer apply (entity gone, component already present or already
// absent) are skipped.
func (w *World) processOperationQueue() error {
	if w.flushing {
		return nil
	}
	w.flushing = true
	defer func() { w.flushing = false }()

	for !w.opQueue.empty() {
		batch := w.opQueue.take()

		for _, op := range batch.createOps {
			entities, err := w.NewEntities(op.amount, op.comps...)
			if err != nil {
				return eris.Wrap(err, "failed to process queued entity creation")
			}
			if op.onCreate != nil {
				op.onCreate(entities)
			}
		}

		for _, op := range batch.componentOps {
			if _, doomed := batch.pendingDestroy[op.entity]; doomed {
				continue
			}
			if !w.Alive(op.entity) {
				Config.Logger().Debug("skipped queued operation",
					bark.KeyOperation, op.typ.String(),
					"world", w.String(),
					"comp", op.comps[0].String(),
					"entity", op.entity,
				)
				continue
			}
			c := op.comps[0]
			switch op.typ {
			case opAddComponent:
				if w.HasComponent(c, op.entity) {
					continue
				}
				if err := w.AddComponent(c, op.entity); err != nil {
					return eris.Wrap(err, "failed to add queued component")
				}
			case opRemoveComponent:
				if !w.HasComponent(c, op.entity) {
					continue
				}
				if err := w.RemoveComponent(c, op.entity); err != nil {
					return eris.Wrap(err, "failed to remove queued component")
				}
			}
		}

		for _, op := range batch.destroyOps {
			if !w.Alive(op.entity) {
				continue
			}
			if err := w.DestroyEntity(op.entity); err != nil {
				return eris.Wrap(err, "failed to destroy queued entity")
			}
		}
	}
	return nil
}

func (q *opQueue) enqueueDestroy(e Entity) {
	if _, exists := q.pendingDestroy[e]; exists {
		return
	}
	q.pendingDestroy[e] = struct{}{}
	q.destroyOps = append(q.destroyOps, operation{typ: opDestroy, entity: e})
}

func (q *opQueue) enqueueComponentOp(typ operationType, e Entity, c *Component) {
	// Entities pending destruction ignore further component changes
	if _, doomed := q.pendingDestroy[e]; doomed {
		return
	}
	q.componentOps = append(q.componentOps, operation{
		typ:    typ,
		entity: e,
		comps:  []*Component{c},
	})
}

// EnqueueNewEntities creates entities now when the world is unlocked and
// otherwise once it is. onCreate, when non-nil, receives the new ids.
func (w *World) EnqueueNewEntities(n int, onCreate func([]Entity), components ...*Component) error {
	if !w.Locked() {
		entities, err := w.NewEntities(n, components...)
		if err != nil {
			return eris.Wrap(err, "failed to create entities directly")
		}
		if onCreate != nil {
			onCreate(entities)
		}
		return nil
	}
	w.opQueue.createOps = append(w.opQueue.createOps, operation{
		typ:      opCreate,
		amount:   n,
		comps:    components,
		onCreate: onCreate,
	})
	return nil
}

func (w *World) EnqueueDestroyEntity(e Entity) error {
	if !w.Locked() {
		return w.DestroyEntity(e)
	}
	w.opQueue.enqueueDestroy(e)
	return nil
}

func (w *World) EnqueueAddComponent(c *Component, e Entity) error {
	if !w.Locked() {
		return w.AddComponent(c, e)
	}
	w.opQueue.enqueueComponentOp(opAddComponent, e, c)
	return nil
}

func (w *World) EnqueueRemoveComponent(c *Component, e Entity) error {
	if !w.Locked() {
		return w.RemoveComponent(c, e)
	}
	w.opQueue.enqueueComponentOp(opRemoveComponent, e, c)
	return nil
}
