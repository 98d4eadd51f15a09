package main

import (
	"fmt"

	"github.com/TheBitDrifter/silo"
	"github.com/go-gl/mathgl/mgl64"
)

type simulation struct {
	world *silo.World

	transform, motion *silo.Component
	position          *silo.Vector
	velocity          *silo.Vector

	moving  *silo.Query
	idle    *silo.Query
	entered *silo.ReactiveQuery
	exited  *silo.ReactiveQuery
	frame   int
}

func newSimulation(transform, motion *silo.Component, n int) (*simulation, error) {
	position, ok := transform.Vector("position")
	if !ok || position.Len() != 3 || position.Type() != silo.F64 {
		return nil, fmt.Errorf("transform.position must be an f64 vector of 3")
	}
	velocity, ok := motion.Vector("velocity")
	if !ok || velocity.Len() != 3 || velocity.Type() != silo.F64 {
		return nil, fmt.Errorf("motion.velocity must be an f64 vector of 3")
	}

	world := silo.Factory.NewWorld()
	half := n / 2
	if _, err := world.NewEntities(half, transform, motion); err != nil {
		return nil, err
	}
	if _, err := world.NewEntities(n-half, transform); err != nil {
		return nil, err
	}

	moving := silo.DefineQuery(transform, motion)
	sim := &simulation{
		world:     world,
		transform: transform,
		motion:    motion,
		position:  position,
		velocity:  velocity,
		moving:    moving,
		idle:      silo.DefineQuery(transform, silo.Not(motion)),
		entered:   silo.EnterQuery(moving),
		exited:    silo.ExitQuery(moving),
	}
	return sim, nil
}

// step drains the reactive queries, integrates positions and toggles motion
// on a slice of entities. It returns how many entities entered and exited
// the moving set since the previous step. The first failed enqueue stops the
// walk it happened in and is returned.
func (s *simulation) step(dt float64, churnEvery int) (entered, exited int, err error) {
	for _, e := range s.entered.Drain(s.world) {
		entered++
		s.velocity.SetVec3(e, mgl64.Vec3{float64(e%7) - 3, 1, float64(e%5) - 2})
	}
	for _, e := range s.exited.Drain(s.world) {
		exited++
		if s.world.Alive(e) {
			s.velocity.SetVec3(e, mgl64.Vec3{})
		}
	}

	stopped := 0
	cursor := silo.Factory.NewCursor(s.moving, s.world)
	for i, e := range cursor.Entities() {
		s.position.SetVec3(e, s.position.Vec3(e).Add(s.velocity.Vec3(e).Mul(dt)))
		if churnEvery > 0 && (i+s.frame)%churnEvery == 0 {
			if err = s.world.EnqueueRemoveComponent(s.motion, e); err != nil {
				return entered, exited, fmt.Errorf("failed to stop entity %d: %w", e, err)
			}
			stopped++
		}
	}

	cursor = silo.Factory.NewCursor(s.idle, s.world)
	for _, e := range cursor.Entities() {
		if stopped == 0 {
			break
		}
		if err = s.world.EnqueueAddComponent(s.motion, e); err != nil {
			return entered, exited, fmt.Errorf("failed to start entity %d: %w", e, err)
		}
		stopped--
	}

	s.frame++
	return entered, exited, nil
}
