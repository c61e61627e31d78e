package tool

import (
	"strings"
	"sync"

	"github.com/leofalp/calcagent/providers/ai"
)

// Catalog is an ordered, case-insensitive registry of tools. Registration
// order is what the model sees.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	tools map[string]GenericTool
}

func NewCatalog() *Catalog {
	return &Catalog{tools: make(map[string]GenericTool)}
}

// NewCatalogWithTools returns a catalog holding tools in the given order.
func NewCatalogWithTools(tools ...GenericTool) *Catalog {
	catalog := NewCatalog()
	catalog.AddTools(tools...)
	return catalog
}

// FromCapabilities is NewCatalogWithTools for a capability slice.
func FromCapabilities(capabilities []*Capability) *Catalog {
	catalog := NewCatalog()
	for _, c := range capabilities {
		catalog.AddTools(c)
	}
	return catalog
}

// AddTools registers tools. A name already present is replaced in place and
// keeps its position.
func (c *Catalog) AddTools(tools ...GenericTool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		key := catalogKey(t.ToolInfo().Name)
		if _, exists := c.tools[key]; !exists {
			c.order = append(c.order, key)
		}
		c.tools[key] = t
	}
}

func (c *Catalog) Get(name string) (GenericTool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tools[catalogKey(name)]
	return t, ok
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Remove deletes name and reports whether it was present.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := catalogKey(name)
	if _, exists := c.tools[key]; !exists {
		return false
	}
	delete(c.tools, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the tools in registration order.
func (c *Catalog) List() []GenericTool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]GenericTool, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.tools[key])
	}
	return out
}

// Descriptions returns what the agent advertises to the model, in order.
func (c *Catalog) Descriptions() []ai.ToolDescription {
	tools := c.List()
	out := make([]ai.ToolDescription, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.ToolInfo())
	}
	return out
}

func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
