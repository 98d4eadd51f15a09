package silo

import (
	"encoding/json"
	"fmt"
	"io"
)

// Catalog is a capacity-bounded, name-keyed set of schemas, typically loaded
// from a JSON document by tooling and turned into components with
// DefineComponent.
type Catalog struct {
	items       []Schema
	itemIndices map[string]int
	maxCapacity int
}

func newCatalog(capacity int) *Catalog {
	return &Catalog{
		itemIndices: make(map[string]int),
		maxCapacity: capacity,
	}
}

func (c *Catalog) GetIndex(name string) (int, bool) {
	index, ok := c.itemIndices[name]
	return index, ok
}

func (c *Catalog) GetItem(index int) Schema {
	return c.items[index]
}

// Schema returns the schema registered under name.
func (c *Catalog) Schema(name string) (Schema, bool) {
	index, ok := c.itemIndices[name]
	if !ok {
		return nil, false
	}
	return c.items[index], true
}

// Register adds schema under name and returns its index.
func (c *Catalog) Register(name string, schema Schema) (int, error) {
	if _, exists := c.itemIndices[name]; exists {
		return -1, fmt.Errorf("schema %q already registered", name)
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("catalog at maximum capacity (%d)", c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[name] = idx
	c.items = append(c.items, schema)

	return idx, nil
}

// Load registers every schema of a JSON object keyed by component name.
func (c *Catalog) Load(r io.Reader) error {
	var doc map[string]Schema
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode schema catalog: %w", err)
	}
	for _, name := range sortedKeys(doc) {
		if _, err := c.Register(name, doc[name]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) Names() []string {
	return sortedKeys(c.itemIndices)
}

func (c *Catalog) Len() int {
	return len(c.items)
}

func (c *Catalog) Clear() {
	c.items = nil
	c.itemIndices = make(map[string]int)
}
