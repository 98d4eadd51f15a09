package silo

// Event selects which transition of a query an observer is told about.
type Event int

const (
	// OnAdd fires when an entity starts matching a query.
	OnAdd Event = iota
	// OnRemove fires when an entity stops matching a query, including on destruction.
	OnRemove
)

// Observer is called synchronously from inside the mutation that caused it.
type Observer func(Entity)

type listener struct {
	fn     Observer
	active bool
}

// queryCache is the live match set of one query in one world, kept as a
// dense list plus a sparse index from entity to slot. The list is in
// discovery order until the first removal.
type queryCache struct {
	query     *Query
	matcher   matcher
	dense     []Entity
	sparse    []int32 // slot+1, 0 when absent
	listeners [2][]*listener
}

func (w *World) mustCache(q *Query) *queryCache {
	qc, err := w.cacheFor(q)
	if err != nil {
		panic(err)
	}
	return qc
}

func (w *World) cacheFor(q *Query) (*queryCache, error) {
	if qc, ok := w.byQuery[q]; ok {
		return qc, nil
	}
	m, err := q.root.compile(w)
	if err != nil {
		return nil, err
	}
	qc := &queryCache{query: q, matcher: m}
	for _, e := range w.dense {
		if m.match(w.masks[e]) {
			qc.insert(e)
		}
	}
	w.byQuery[q] = qc
	w.caches = append(w.caches, qc)
	return qc, nil
}

func (qc *queryCache) has(e Entity) bool {
	return int(e) < len(qc.sparse) && qc.sparse[e] != 0
}

func (qc *queryCache) insert(e Entity) {
	for int(e) >= len(qc.sparse) {
		qc.sparse = append(qc.sparse, 0)
	}
	qc.dense = append(qc.dense, e)
	qc.sparse[e] = int32(len(qc.dense))
}

// remove moves the last member into the freed slot.
func (qc *queryCache) remove(e Entity) {
	slot := qc.sparse[e] - 1
	last := qc.dense[len(qc.dense)-1]
	qc.dense[slot] = last
	qc.sparse[last] = slot + 1
	qc.dense = qc.dense[:len(qc.dense)-1]
	qc.sparse[e] = 0
}

func (qc *queryCache) notify(ev Event, e Entity) {
	for _, l := range qc.listeners[ev] {
		if l.active {
			l.fn(e)
		}
	}
}

func (qc *queryCache) attach(ev Event, fn Observer) func() {
	l := &listener{fn: fn, active: true}
	qc.listeners[ev] = append(qc.listeners[ev], l)
	return func() {
		if !l.active {
			return
		}
		l.active = false
		kept := make([]*listener, 0, len(qc.listeners[ev]))
		for _, other := range qc.listeners[ev] {
			if other != l {
				kept = append(kept, other)
			}
		}
		qc.listeners[ev] = kept
	}
}

// Observe registers fn to run whenever an entity enters (OnAdd) or leaves
// (OnRemove) the match set of q in w. Observers run in registration order
// while the world is locked. The returned function detaches fn.
func (w *World) Observe(ev Event, q *Query, fn Observer) (func(), error) {
	qc, err := w.cacheFor(q)
	if err != nil {
		return nil, err
	}
	return qc.attach(ev, fn), nil
}
