package silo

type factory struct{}

var Factory factory

func (f factory) NewWorld() *World {
	return newWorld()
}

func (f factory) NewColumn(t Type) (Column, error) {
	return NewColumn(t)
}

func (f factory) NewStore(schema Schema) (*Store, error) {
	return NewStore(schema)
}

func (f factory) NewQuery(terms ...any) *Query {
	return DefineQuery(terms...)
}

func (f factory) NewCursor(query *Query, world *World) *Cursor {
	return newCursor(query, world)
}

func (f factory) NewCatalog(capacity int) *Catalog {
	return newCatalog(capacity)
}

func FactoryNewComponent[T any](schema Schema) (*Component, error) {
	return DefineComponent[T](schema)
}
