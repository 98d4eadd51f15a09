package silo

// ReactiveQuery reports the entities that entered (EnterQuery) or exited
// (ExitQuery) a query's match set since the previous Drain in the same world.
//
// Per world it is either unsubscribed or subscribed. The first Drain in a
// world subscribes: an enter query seeds its queue with the current match
// set, an exit query starts empty. Every Drain returns the queue and empties
// it. Subscription state is owned by the world and dropped by World.Destroy.
type ReactiveQuery struct {
	query  *Query
	event  Event
	worlds map[*World]struct{}
	closed bool
}

type subscription struct {
	queue     []Entity
	queued    map[Entity]struct{}
	unobserve func()
}

// EnterQuery wraps q so each Drain returns the entities that started matching.
func EnterQuery(q *Query) *ReactiveQuery {
	return newReactiveQuery(q, OnAdd)
}

// ExitQuery wraps q so each Drain returns the entities that stopped matching.
func ExitQuery(q *Query) *ReactiveQuery {
	return newReactiveQuery(q, OnRemove)
}

func newReactiveQuery(q *Query, ev Event) *ReactiveQuery {
	return &ReactiveQuery{
		query:  q,
		event:  ev,
		worlds: make(map[*World]struct{}),
	}
}

func (r *ReactiveQuery) Query() *Query {
	return r.query
}

// Drain returns the entities queued for w since the last Drain and clears the
// queue. An id appears at most once per result. After Unsubscribe it returns
// an empty result and does not subscribe again.
func (r *ReactiveQuery) Drain(w *World) []Entity {
	if r.closed {
		return []Entity{}
	}
	sub, ok := w.reactive[r]
	if !ok {
		sub = r.subscribe(w)
	}
	out := make([]Entity, len(sub.queue))
	copy(out, sub.queue)
	sub.queue = sub.queue[:0]
	clear(sub.queued)
	return out
}

func (r *ReactiveQuery) subscribe(w *World) *subscription {
	qc := w.mustCache(r.query)
	sub := &subscription{queued: make(map[Entity]struct{})}
	if r.event == OnAdd {
		for _, e := range qc.dense {
			sub.push(e)
		}
	}
	sub.unobserve = qc.attach(r.event, sub.push)
	w.reactive[r] = sub
	r.worlds[w] = struct{}{}
	return sub
}

func (sub *subscription) push(e Entity) {
	if _, dup := sub.queued[e]; dup {
		return
	}
	sub.queued[e] = struct{}{}
	sub.queue = append(sub.queue, e)
}

func (sub *subscription) detach() {
	if sub.unobserve != nil {
		sub.unobserve()
		sub.unobserve = nil
	}
	sub.queue = nil
	clear(sub.queued)
}

// Unsubscribe detaches r from every world it is subscribed to. Pending
// entries are discarded.
func (r *ReactiveQuery) Unsubscribe() {
	for w := range r.worlds {
		if sub, ok := w.reactive[r]; ok {
			sub.detach()
			delete(w.reactive, r)
		}
	}
	clear(r.worlds)
	r.closed = true
}

// UnsubscribeWorld detaches r from w only. A later Drain in w subscribes afresh.
func (r *ReactiveQuery) UnsubscribeWorld(w *World) {
	if sub, ok := w.reactive[r]; ok {
		sub.detach()
		delete(w.reactive, r)
	}
	delete(r.worlds, w)
}
