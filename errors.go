package silo

import "fmt"

type UnsupportedTypeError struct {
	Type Type
}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported SoA type: %q", string(e.Type))
}

type CapacityExceededError struct {
	Type      Type
	Requested int
	Ceiling   int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("%s column cannot grow to %d elements, ceiling is %d", e.Type, e.Requested, e.Ceiling)
}

type ReentrantGrowError struct {
	Type Type
}

func (e ReentrantGrowError) Error() string {
	return fmt.Sprintf("%s column is already growing", e.Type)
}

type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "world is currently locked"
}

type EntityNotFoundError struct {
	Entity Entity
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %d does not exist", e.Entity)
}

type ComponentExistsError struct {
	Component *Component
	Entity    Entity
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component %s already exists on entity %d", e.Component, e.Entity)
}

type ComponentNotFoundError struct {
	Component *Component
	Entity    Entity
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component %s does not exist on entity %d", e.Component, e.Entity)
}

type TooManyComponentsError struct {
	Component *Component
}

func (e TooManyComponentsError) Error() string {
	return fmt.Sprintf("cannot register %s: world already holds %d components", e.Component, MaxComponents)
}

type InvalidFieldError struct {
	Value any
}

func (e InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid schema field: %v (%T)", e.Value, e.Value)
}
