/*
Package silo provides an Entity-Component-System (ECS) core built on structure-of-arrays storage.

Silo keeps every leaf field of a component in its own dense, typed column indexed directly by
entity id, so per-frame systems read and write component values without any indirection.
Membership of entities in components is tracked per world, and queries report either the
current match set or the entities that entered or exited it since the last read.

Core Concepts:

  - Entity: An opaque integer handle, valid from creation until destruction.
  - Column: A growable typed array with a hard ceiling fixed at construction.
  - Component: A schema-driven tree of columns, one per leaf field.
  - World: One isolated ECS instance holding entities and their component membership.
  - Query: A component-presence filter evaluated against a world.
  - ReactiveQuery: An enter or exit view of a query that drains on every read.

Basic Usage:

	import "github.com/go-gl/mathgl/mgl64"

	type Transform struct{}

	transform := silo.MustDefineComponent[Transform](silo.Schema{
		"position": silo.List(silo.F64, 3),
		"scale":    silo.Prim(silo.F32),
	})

	world := silo.Factory.NewWorld()
	query := silo.DefineQuery(transform)
	entered := silo.EnterQuery(query)

	e, err := world.NewEntity()
	if err != nil {
		return err
	}
	if err := silo.AddComponent(world, transform, e); err != nil {
		return err
	}

	pos, _ := transform.Vector("position")
	for _, e := range entered.Drain(world) {
		pos.SetVec3(e, mgl64.Vec3{0, 1, 0})
	}

Silo assumes one logical thread per world and uses no mutexes. World.Lock only
defers mutations, for example while a Cursor walks a query.

Logging goes through bark at debug level; see Config.SetLogger.
*/
package silo
