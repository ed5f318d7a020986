package dashboard

import (
	"context"
	"fmt"
	"slices"

	"github.com/san-kum/vizdash/internal/chart"
	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/datasets"
	"github.com/san-kum/vizdash/internal/frame"
)

// Context is a dashboard bound to its loaded dataset. It is built once at
// startup and never modified, so any number of sessions may recompute
// against it concurrently.
type Context struct {
	def       Definition
	data      *frame.Dataset
	decls     []controls.Declaration
	palettes  map[string]chart.Palette
	locations map[string]bool
}

// New binds def to data. It fails with frame.ErrMissingColumn when data
// lacks a column the dashboard reads.
func New(def Definition, data *frame.Dataset) (*Context, error) {
	for _, c := range def.Columns {
		if _, err := data.Schema().Require(c.Name, c.Kind); err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
	}

	c := &Context{
		def:      def,
		data:     data,
		palettes: make(map[string]chart.Palette),
	}
	if def.Declare != nil {
		decls, err := def.Declare(data)
		if err != nil {
			return nil, fmt.Errorf("%s: declare controls: %w", def.Name, err)
		}
		c.decls = decls
	}

	for _, col := range def.Columns {
		if col.Kind != frame.Categorical {
			continue
		}
		keys, err := data.Distinct(col.Name)
		if err != nil {
			return nil, err
		}
		c.palettes[col.Name] = chart.NewPalette(keys...)
	}

	if sel := def.Selection; sel != nil {
		keys, err := data.Distinct(sel.Column)
		if err != nil {
			return nil, fmt.Errorf("%s: selection: %w", def.Name, err)
		}
		c.locations = make(map[string]bool, len(keys))
		for _, k := range keys {
			c.locations[k] = true
		}
	}
	return c, nil
}

// Load opens source (see datasets.Open) and binds def to it. An empty
// source loads the dashboard's builtin dataset.
func Load(ctx context.Context, def Definition, source string) (*Context, error) {
	if source == "" {
		source = "builtin:" + def.Dataset
	}
	data, err := datasets.Open(ctx, source, def.Columns...)
	if err != nil {
		return nil, fmt.Errorf("%s: load %s: %w", def.Name, source, err)
	}
	return New(def, data)
}

func (c *Context) Name() string             { return c.def.Name }
func (c *Context) Definition() Definition   { return c.def }
func (c *Context) Data() *frame.Dataset     { return c.data }
func (c *Context) Defaults() controls.State { return controls.Defaults(c.decls) }

// Controls returns the control declarations in display order.
func (c *Context) Controls() []controls.Declaration {
	return slices.Clone(c.decls)
}

func (c *Context) Control(id string) (controls.Declaration, bool) {
	return controls.Find(c.decls, id)
}

func (c *Context) Output(id string) (OutputDecl, bool) {
	for _, o := range c.def.Outputs {
		if o.ID == id {
			return o, true
		}
	}
	return OutputDecl{}, false
}

// OutputIDs lists the outputs in declared order.
func (c *Context) OutputIDs() []string {
	ids := make([]string, len(c.def.Outputs))
	for i, o := range c.def.Outputs {
		ids[i] = o.ID
	}
	return ids
}

// Palette returns the stable palette for a categorical column.
func (c *Context) Palette(col string) chart.Palette {
	return c.palettes[col]
}

// ResolveClick maps a click on output at location to the new selection.
func (c *Context) ResolveClick(output, location string) (string, error) {
	sel := c.def.Selection
	if sel == nil || sel.Output != output {
		return "", fmt.Errorf("%w: %s", ErrNotClickable, output)
	}
	if !c.locations[location] {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocation, location)
	}
	return location, nil
}

// Locations lists the clickable locations in sorted order.
func (c *Context) Locations() []string {
	if c.def.Selection == nil {
		return nil
	}
	keys, _ := c.data.Distinct(c.def.Selection.Column)
	return keys
}
