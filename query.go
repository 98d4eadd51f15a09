package silo

import (
	"github.com/TheBitDrifter/mask"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

// QueryNode is one node of a component-presence filter.
type QueryNode interface {
	compile(w *World) (matcher, error)
}

// Query is a filter over component presence. The same Query can be run
// against any number of worlds; each world keeps its own match cache.
type Query struct {
	root QueryNode
}

type compositeNode struct {
	op         Operation
	children   []QueryNode
	components []*Component
}

// matcher is a compositeNode resolved against one world's bit assignment.
type matcher struct {
	op       Operation
	mask     mask.Mask
	children []matcher
}

// DefineQuery returns a query matching entities that satisfy every term.
// Terms are *Component, []*Component or nodes built with And, Or and Not.
func DefineQuery(terms ...any) *Query {
	return &Query{root: And(terms...)}
}

func And(items ...any) QueryNode {
	return newCompositeNode(OpAnd, items)
}

func Or(items ...any) QueryNode {
	return newCompositeNode(OpOr, items)
}

func Not(items ...any) QueryNode {
	return newCompositeNode(OpNot, items)
}

func newCompositeNode(op Operation, items []any) *compositeNode {
	components, children := processItems(items...)
	return &compositeNode{
		op:         op,
		children:   children,
		components: components,
	}
}

func processItems(items ...any) ([]*Component, []QueryNode) {
	components := make([]*Component, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case *Component:
			components = append(components, v)
		case []*Component:
			components = append(components, v...)
		case *Query:
			children = append(children, v.root)
		case QueryNode:
			children = append(children, v)
		}
	}

	return components, children
}

func (n *compositeNode) compile(w *World) (matcher, error) {
	m := matcher{op: n.op}
	for _, comp := range n.components {
		bit, err := w.bitFor(comp)
		if err != nil {
			return matcher{}, err
		}
		m.mask.Mark(bit)
	}
	for _, child := range n.children {
		cm, err := child.compile(w)
		if err != nil {
			return matcher{}, err
		}
		m.children = append(m.children, cm)
	}
	return m, nil
}

func (m matcher) match(entityMask mask.Mask) bool {
	switch m.op {
	case OpAnd:
		if !entityMask.ContainsAll(m.mask) {
			return false
		}
		for _, child := range m.children {
			if !child.match(entityMask) {
				return false
			}
		}
		return true

	case OpOr:
		if entityMask.ContainsAny(m.mask) {
			return true
		}
		for _, child := range m.children {
			if child.match(entityMask) {
				return true
			}
		}
		return false

	case OpNot:
		for _, child := range m.children {
			if child.match(entityMask) {
				return false
			}
		}
		return entityMask.ContainsNone(m.mask)
	}
	return false
}

// Run returns the entities currently matching q in w, in discovery order
// until the first removal from the match set.
// The first run in a world builds that world's cache for q.
func (q *Query) Run(w *World) []Entity {
	qc := w.mustCache(q)
	out := make([]Entity, len(qc.dense))
	copy(out, qc.dense)
	return out
}

// Matches reports whether e currently satisfies q in w.
func (q *Query) Matches(w *World, e Entity) bool {
	return w.mustCache(q).has(e)
}

// Count returns the number of entities currently matching q in w.
func (q *Query) Count(w *World) int {
	return len(w.mustCache(q).dense)
}
