package silo

import (
	"log/slog"

	"github.com/TheBitDrifter/bark"
)

// Config holds global configuration for column allocation
var Config config = config{
	maxElements: 1 << 20,
	pageSize:    4096,
}

type config struct {
	maxElements int
	pageSize    int
	logger      *slog.Logger
}

// SetMaxElements sets the element ceiling reserved by columns created afterwards
func (c *config) SetMaxElements(n int) {
	if n < 1 {
		n = 1
	}
	c.maxElements = n
}

// SetPageSize sets the page size, rounded up to a power of two, of columns created afterwards
func (c *config) SetPageSize(n int) {
	size := 1
	for size < n {
		size <<= 1
	}
	c.pageSize = size
}

// SetLogger replaces the bark logger worlds report skipped queued operations and teardown to; nil restores it
func (c *config) SetLogger(l *slog.Logger) {
	c.logger = l
}

func (c *config) MaxElements() int {
	return c.maxElements
}

func (c *config) PageSize() int {
	return c.pageSize
}

// Logger returns the configured logger, falling back to bark's "silo" component logger
func (c *config) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return bark.For("silo")
}
