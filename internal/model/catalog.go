package model

import (
	"fmt"
	"strings"
)

// Catalog holds the shop's tools, risers and parts. It is owned by the
// caller and passed explicitly to whatever needs it.
type Catalog struct {
	Tools  []Tool  `json:"tools"`
	Risers []Riser `json:"risers"`
	Parts  []Part  `json:"parts"`
}

// NewCatalog returns an empty catalog with non-nil collections.
func NewCatalog() *Catalog {
	return &Catalog{
		Tools:  []Tool{},
		Risers: []Riser{},
		Parts:  []Part{},
	}
}

// FindTool returns a pointer to the tool with the given name, or nil.
func (c *Catalog) FindTool(name string) *Tool {
	for i := range c.Tools {
		if c.Tools[i].Name == name {
			return &c.Tools[i]
		}
	}
	return nil
}

// FindRiser returns a pointer to the riser with the given name, or nil.
func (c *Catalog) FindRiser(name string) *Riser {
	for i := range c.Risers {
		if c.Risers[i].Name == name {
			return &c.Risers[i]
		}
	}
	return nil
}

// FindPart returns a pointer to the part with the given name, or nil.
func (c *Catalog) FindPart(name string) *Part {
	for i := range c.Parts {
		if c.Parts[i].Name == name {
			return &c.Parts[i]
		}
	}
	return nil
}

// Tool returns a copy of the named tool.
func (c *Catalog) Tool(name string) (Tool, error) {
	if t := c.FindTool(name); t != nil {
		return *t, nil
	}
	return Tool{}, fmt.Errorf("tool %q: %w", name, ErrNotFound)
}

// Riser returns a copy of the named riser.
func (c *Catalog) Riser(name string) (Riser, error) {
	if r := c.FindRiser(name); r != nil {
		return *r, nil
	}
	return Riser{}, fmt.Errorf("riser %q: %w", name, ErrNotFound)
}

// Part returns a copy of the named part.
func (c *Catalog) Part(name string) (Part, error) {
	if p := c.FindPart(name); p != nil {
		return *p, nil
	}
	return Part{}, fmt.Errorf("part %q: %w", name, ErrNotFound)
}

// AddTool validates t and appends it. Names are unique.
func (c *Catalog) AddTool(t Tool) error {
	t.Name = strings.TrimSpace(t.Name)
	if err := t.Validate(); err != nil {
		return err
	}
	if c.FindTool(t.Name) != nil {
		return fmt.Errorf("tool %q: %w", t.Name, ErrDuplicateName)
	}
	c.Tools = append(c.Tools, t)
	return nil
}

// AddRiser validates r and appends it. Names are unique.
func (c *Catalog) AddRiser(r Riser) error {
	r.Name = strings.TrimSpace(r.Name)
	if err := r.Validate(); err != nil {
		return err
	}
	if c.FindRiser(r.Name) != nil {
		return fmt.Errorf("riser %q: %w", r.Name, ErrDuplicateName)
	}
	c.Risers = append(c.Risers, r)
	return nil
}

// AddPart validates p, resolves its tool and riser references and appends it.
func (c *Catalog) AddPart(p Part) error {
	p.Name = strings.TrimSpace(p.Name)
	if len(c.Tools) == 0 {
		return fmt.Errorf("add tools before adding parts: %w", ErrNotFound)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if c.FindPart(p.Name) != nil {
		return fmt.Errorf("part %q: %w", p.Name, ErrDuplicateName)
	}
	if err := c.checkRefs(p); err != nil {
		return err
	}
	c.Parts = append(c.Parts, p)
	return nil
}

func (c *Catalog) checkRefs(p Part) error {
	if c.FindTool(p.Tool) == nil {
		return fmt.Errorf("part %q references tool %q: %w", p.Name, p.Tool, ErrNotFound)
	}
	if p.HasRiser() && c.FindRiser(p.Riser) == nil {
		return fmt.Errorf("part %q references riser %q: %w", p.Name, p.Riser, ErrNotFound)
	}
	return nil
}

// DeleteTool removes the named tool. A tool used by any part cannot be removed.
func (c *Catalog) DeleteTool(name string) error {
	for _, p := range c.Parts {
		if p.Tool == name {
			return fmt.Errorf("tool %q is used by part %q: %w", name, p.Name, ErrInUse)
		}
	}
	for i := range c.Tools {
		if c.Tools[i].Name == name {
			c.Tools = append(c.Tools[:i], c.Tools[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("tool %q: %w", name, ErrNotFound)
}

// DeleteRiser removes the named riser. A riser used by any part cannot be removed.
func (c *Catalog) DeleteRiser(name string) error {
	for _, p := range c.Parts {
		if p.Riser == name {
			return fmt.Errorf("riser %q is used by part %q: %w", name, p.Name, ErrInUse)
		}
	}
	for i := range c.Risers {
		if c.Risers[i].Name == name {
			c.Risers = append(c.Risers[:i], c.Risers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("riser %q: %w", name, ErrNotFound)
}

// DeletePart removes the named part.
func (c *Catalog) DeletePart(name string) error {
	for i := range c.Parts {
		if c.Parts[i].Name == name {
			c.Parts = append(c.Parts[:i], c.Parts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("part %q: %w", name, ErrNotFound)
}

// Check verifies every catalog invariant. It is used after loading from
// disk, where rows may have been edited by hand.
func (c *Catalog) Check() error {
	tools := make(map[string]bool, len(c.Tools))
	for _, t := range c.Tools {
		if err := t.Validate(); err != nil {
			return err
		}
		if tools[t.Name] {
			return fmt.Errorf("tool %q: %w", t.Name, ErrDuplicateName)
		}
		tools[t.Name] = true
	}
	risers := make(map[string]bool, len(c.Risers))
	for _, r := range c.Risers {
		if err := r.Validate(); err != nil {
			return err
		}
		if risers[r.Name] {
			return fmt.Errorf("riser %q: %w", r.Name, ErrDuplicateName)
		}
		risers[r.Name] = true
	}
	parts := make(map[string]bool, len(c.Parts))
	for _, p := range c.Parts {
		if err := p.Validate(); err != nil {
			return err
		}
		if parts[p.Name] {
			return fmt.Errorf("part %q: %w", p.Name, ErrDuplicateName)
		}
		parts[p.Name] = true
		if err := c.checkRefs(p); err != nil {
			return err
		}
	}
	return nil
}

// ToolNames returns the tool names in catalog order.
func (c *Catalog) ToolNames() []string {
	names := make([]string, len(c.Tools))
	for i, t := range c.Tools {
		names[i] = t.Name
	}
	return names
}

// RiserNames returns the riser names in catalog order.
func (c *Catalog) RiserNames() []string {
	names := make([]string, len(c.Risers))
	for i, r := range c.Risers {
		names[i] = r.Name
	}
	return names
}

// PartNames returns the part names in catalog order.
func (c *Catalog) PartNames() []string {
	names := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		names[i] = p.Name
	}
	return names
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{
		Tools:  append([]Tool{}, c.Tools...),
		Risers: append([]Riser{}, c.Risers...),
		Parts:  append([]Part{}, c.Parts...),
	}
}
