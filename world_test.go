package silo

import (
	"errors"
	"slices"
	"testing"
)

// Test component marker types
type Position struct{}
type Velocity struct{}
type Health struct{}

func newTestComponents(t *testing.T) (pos, vel, health *Component) {
	t.Helper()
	var err error
	pos, err = DefineComponent[Position](Schema{"x": Prim(F64), "y": Prim(F64)})
	if err != nil {
		t.Fatalf("Failed to define position: %v", err)
	}
	vel, err = DefineComponent[Velocity](Schema{"v": List(F32, 3)})
	if err != nil {
		t.Fatalf("Failed to define velocity: %v", err)
	}
	health, err = DefineComponent[Health](Schema{"current": Prim(I32), "max": Prim(I32)})
	if err != nil {
		t.Fatalf("Failed to define health: %v", err)
	}
	return pos, vel, health
}

// TestComponentMembership tests add, has and remove
func TestComponentMembership(t *testing.T) {
	pos, vel, _ := newTestComponents(t)
	world := Factory.NewWorld()

	e, err := world.NewEntity()
	if err != nil {
		t.Fatalf("Failed to create entity: %v", err)
	}
	if HasComponent(world, pos, e) {
		t.Errorf("Fresh entity has position")
	}

	if err := AddComponent(world, pos, e); err != nil {
		t.Fatalf("Failed to add position: %v", err)
	}
	if !HasComponent(world, pos, e) || HasComponent(world, vel, e) {
		t.Errorf("Membership after add: pos=%v vel=%v, want true false",
			HasComponent(world, pos, e), HasComponent(world, vel, e))
	}

	var exists ComponentExistsError
	if err := AddComponent(world, pos, e); !errors.As(err, &exists) {
		t.Errorf("Second add: %v, want ComponentExistsError", err)
	}

	if err := RemoveComponent(world, pos, e); err != nil {
		t.Fatalf("Failed to remove position: %v", err)
	}
	if HasComponent(world, pos, e) {
		t.Errorf("Entity still has position after removal")
	}

	var missing ComponentNotFoundError
	if err := RemoveComponent(world, pos, e); !errors.As(err, &missing) {
		t.Errorf("Second remove: %v, want ComponentNotFoundError", err)
	}
	if err := RemoveComponent(world, vel, e); !errors.As(err, &missing) {
		t.Errorf("Remove of never registered component: %v, want ComponentNotFoundError", err)
	}
}

// TestAddComponentGrowsStore tests that adding a component makes the entity a valid index
func TestAddComponentGrowsStore(t *testing.T) {
	pos, _, _ := newTestComponents(t)
	world := Factory.NewWorld()

	entities, err := world.NewEntities(40)
	if err != nil {
		t.Fatalf("Failed to create entities: %v", err)
	}
	last := entities[len(entities)-1]
	if err := world.AddComponent(pos, last); err != nil {
		t.Fatalf("Failed to add position: %v", err)
	}
	if pos.Len() <= int(last) {
		t.Fatalf("Store length %d does not cover entity %d", pos.Len(), last)
	}
	x, _ := pos.Column("x")
	x.SetFloat64(last, 12)
	if x.Float64(last) != 12 {
		t.Errorf("x of entity %d: %v, want 12", last, x.Float64(last))
	}
}

// TestEntityDestruction tests destroying and recycling entities
func TestEntityDestruction(t *testing.T) {
	pos, vel, _ := newTestComponents(t)
	world := Factory.NewWorld()

	entities, err := world.NewEntities(10, pos, vel)
	if err != nil {
		t.Fatalf("Failed to create entities: %v", err)
	}

	for _, e := range []Entity{entities[0], entities[2], entities[4]} {
		if err := world.DestroyEntity(e); err != nil {
			t.Fatalf("Failed to destroy entity %d: %v", e, err)
		}
	}

	if world.Len() != 7 {
		t.Errorf("Live entities: %d, want 7", world.Len())
	}
	if world.Alive(entities[2]) || HasComponent(world, pos, entities[2]) {
		t.Errorf("Destroyed entity still reported alive or holding components")
	}

	var notFound EntityNotFoundError
	if err := world.DestroyEntity(entities[2]); !errors.As(err, &notFound) {
		t.Errorf("Double destroy: %v, want EntityNotFoundError", err)
	}
	if err := world.AddComponent(pos, entities[2]); !errors.As(err, &notFound) {
		t.Errorf("Add to destroyed entity: %v, want EntityNotFoundError", err)
	}

	// Recycled in release order
	recycled, err := world.NewEntities(3)
	if err != nil {
		t.Fatalf("Failed to create entities: %v", err)
	}
	want := []Entity{entities[0], entities[2], entities[4]}
	if !slices.Equal(recycled, want) {
		t.Errorf("Recycled ids: %v, want %v", recycled, want)
	}
	if HasComponent(world, pos, recycled[0]) {
		t.Errorf("Recycled entity inherited components")
	}

	fresh, _ := world.NewEntity()
	if fresh != 10 {
		t.Errorf("Fresh id after recycling: %d, want 10", fresh)
	}
}

// TestComponentsOfEntity tests listing an entity's components
func TestComponentsOfEntity(t *testing.T) {
	pos, vel, health := newTestComponents(t)
	world := Factory.NewWorld()

	e, _ := world.NewEntity(pos, health)
	world.NewEntity(vel)

	got := world.Components(e)
	if len(got) != 2 || got[0] != pos || got[1] != health {
		t.Errorf("Components: %v, want [%v %v]", got, pos, health)
	}
	if len(world.Components(99)) != 0 {
		t.Errorf("Unknown entity reported components")
	}
}

// TestEntityCeiling tests that entity ids stop at the column ceiling
func TestEntityCeiling(t *testing.T) {
	defer restoreConfig(Config)
	Config.SetMaxElements(8)

	world := Factory.NewWorld()
	if _, err := world.NewEntities(8); err != nil {
		t.Fatalf("Failed to create entities up to the ceiling: %v", err)
	}
	var capErr CapacityExceededError
	if _, err := world.NewEntity(); !errors.As(err, &capErr) {
		t.Errorf("Entity past ceiling: %v, want CapacityExceededError", err)
	}

	world.DestroyEntity(3)
	if e, err := world.NewEntity(); err != nil || e != 3 {
		t.Errorf("Recycled entity at ceiling: %d, %v, want 3, nil", e, err)
	}
}

// TestWorldLocking tests that locked worlds queue mutations and apply them on unlock
func TestWorldLocking(t *testing.T) {
	pos, vel, _ := newTestComponents(t)
	world := Factory.NewWorld()

	entities, _ := world.NewEntities(3, pos)

	world.Lock()
	world.Lock()
	if !world.Locked() {
		t.Fatalf("World not locked")
	}

	var locked LockedWorldError
	if err := world.AddComponent(vel, entities[0]); !errors.As(err, &locked) {
		t.Errorf("Direct add while locked: %v, want LockedWorldError", err)
	}
	if _, err := world.NewEntity(); !errors.As(err, &locked) {
		t.Errorf("Direct create while locked: %v, want LockedWorldError", err)
	}

	var created []Entity
	world.EnqueueNewEntities(2, func(es []Entity) { created = es }, pos, vel)
	world.EnqueueAddComponent(vel, entities[0])
	world.EnqueueAddComponent(vel, entities[0])
	world.EnqueueRemoveComponent(pos, entities[1])
	world.EnqueueAddComponent(vel, entities[2])
	world.EnqueueDestroyEntity(entities[2])

	world.Unlock()
	if !world.Locked() {
		t.Fatalf("World unlocked after releasing one of two locks")
	}
	if HasComponent(world, vel, entities[0]) {
		t.Errorf("Queued add applied while still locked")
	}

	world.Unlock()
	if world.Locked() {
		t.Fatalf("World still locked")
	}

	if len(created) != 2 || !HasComponent(world, vel, created[1]) {
		t.Errorf("Queued creation: %v", created)
	}
	if !HasComponent(world, vel, entities[0]) {
		t.Errorf("Queued add not applied")
	}
	if HasComponent(world, pos, entities[1]) {
		t.Errorf("Queued remove not applied")
	}
	if world.Alive(entities[2]) {
		t.Errorf("Queued destroy not applied")
	}
	if world.Len() != 4 {
		t.Errorf("Live entities: %d, want 4", world.Len())
	}
}

// TestWorldIsolation tests that membership in one world never shows in another
func TestWorldIsolation(t *testing.T) {
	pos, _, _ := newTestComponents(t)
	a := Factory.NewWorld()
	b := Factory.NewWorld()

	if a.ID() == b.ID() {
		t.Fatalf("Worlds share an id")
	}

	ea, _ := a.NewEntity(pos)
	eb, _ := b.NewEntity()
	if ea != eb {
		t.Fatalf("Expected both worlds to hand out id %d first, got %d", ea, eb)
	}
	if HasComponent(b, pos, eb) {
		t.Errorf("Membership leaked across worlds")
	}
}

// TestNewEntitiesFailedGrow tests that a create rejected by a column ceiling
// leaves no entities behind
func TestNewEntitiesFailedGrow(t *testing.T) {
	defer restoreConfig(Config)
	Config.SetMaxElements(4)
	pos, _, _ := newTestComponents(t)
	Config.SetMaxElements(100)

	world := Factory.NewWorld()
	var capErr CapacityExceededError
	if _, err := world.NewEntities(10, pos); !errors.As(err, &capErr) {
		t.Fatalf("Create past column ceiling: %v, want CapacityExceededError", err)
	}
	if world.Len() != 0 {
		t.Errorf("Live entities after failed create: %d, want 0", world.Len())
	}
	if world.Alive(9) {
		t.Errorf("Entity 9 alive after failed create")
	}

	entities, err := world.NewEntities(4, pos)
	if err != nil {
		t.Fatalf("Failed to create entities within the column ceiling: %v", err)
	}
	if !slices.Equal(entities, []Entity{0, 1, 2, 3}) {
		t.Errorf("Entities: %v, want [0 1 2 3]", entities)
	}
}

// TestComponentBitsPerWorld tests that bits are assigned per world in first use order
func TestComponentBitsPerWorld(t *testing.T) {
	pos, vel, health := newTestComponents(t)
	a := Factory.NewWorld()
	b := Factory.NewWorld()

	a.NewEntity(health, pos)
	b.NewEntity(vel)

	tests := []struct {
		world *World
		comp  *Component
		want  uint32
	}{
		{a, health, 0},
		{a, pos, 1},
		{a, vel, 2},
		{b, vel, 0},
	}
	for _, tt := range tests {
		got, err := tt.world.RowIndexFor(tt.comp)
		if err != nil {
			t.Fatalf("Failed to get bit for %s: %v", tt.comp, err)
		}
		if got != tt.want {
			t.Errorf("Bit for %s: %d, want %d", tt.comp, got, tt.want)
		}
	}
}

// TestTooManyComponents tests the per-world component limit
func TestTooManyComponents(t *testing.T) {
	world := Factory.NewWorld()
	for i := 0; i < MaxComponents; i++ {
		c := MustDefineComponent[Health](Schema{"current": Prim(I32)})
		if _, err := world.RowIndexFor(c); err != nil {
			t.Fatalf("Failed to register component %d: %v", i, err)
		}
	}
	extra := MustDefineComponent[Health](Schema{"current": Prim(I32)})
	var tooMany TooManyComponentsError
	if _, err := world.RowIndexFor(extra); !errors.As(err, &tooMany) {
		t.Errorf("Registering past the limit: %v, want TooManyComponentsError", err)
	}
	if _, err := Factory.NewWorld().RowIndexFor(extra); err != nil {
		t.Errorf("Fresh world rejected component: %v", err)
	}
}
