package catalog

import (
	"github.com/loomworks/loom/engine/colors"
)

// Catalog owns all validated connectors and cables of one harness.
// Connectors and cables share a single designator namespace, and
// iteration follows declaration order.
type Catalog struct {
	reg        *colors.Registry
	order      []string
	connectors map[string]*Connector
	cables     map[string]*Cable
}

// New creates an empty catalog resolving colors against reg.
func New(reg *colors.Registry) *Catalog {
	if reg == nil {
		reg = colors.Default()
	}
	return &Catalog{
		reg:        reg,
		connectors: make(map[string]*Connector),
		cables:     make(map[string]*Cable),
	}
}

// Registry returns the color registry the catalog resolves against.
func (c *Catalog) Registry() *colors.Registry { return c.reg }

// AddConnector validates spec and adds it under the given designator.
// On failure nothing is retained.
func (c *Catalog) AddConnector(designator string, spec ConnectorSpec) (*Connector, error) {
	if c.Has(designator) {
		return nil, NewFieldError(designator, "designator", designator, ErrDuplicateDesignator)
	}
	conn, err := newConnector(designator, spec, c.reg)
	if err != nil {
		return nil, err
	}
	c.connectors[designator] = conn
	c.order = append(c.order, designator)
	return conn, nil
}

// AddCable validates spec and adds it under the given designator.
// On failure nothing is retained.
func (c *Catalog) AddCable(designator string, spec CableSpec) (*Cable, error) {
	if c.Has(designator) {
		return nil, NewFieldError(designator, "designator", designator, ErrDuplicateDesignator)
	}
	cab, err := newCable(designator, spec, c.reg)
	if err != nil {
		return nil, err
	}
	c.cables[designator] = cab
	c.order = append(c.order, designator)
	return cab, nil
}

// Has reports whether a designator exists in either namespace.
func (c *Catalog) Has(designator string) bool {
	_, conn := c.connectors[designator]
	_, cab := c.cables[designator]
	return conn || cab
}

// Connector looks up a connector by designator.
func (c *Catalog) Connector(designator string) (*Connector, bool) {
	conn, ok := c.connectors[designator]
	return conn, ok
}

// Cable looks up a cable by designator.
func (c *Catalog) Cable(designator string) (*Cable, bool) {
	cab, ok := c.cables[designator]
	return cab, ok
}

// Designators returns all designators in declaration order.
func (c *Catalog) Designators() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.order) }
