package model

// OrderedItem is the common view of records kept in a per-user,
// position-ordered list. Both Project and Context implement it.
type OrderedItem interface {
	GetID() string
	GetName() string
	GetState() string
	GetPosition() int
}

// Project implements OrderedItem.

func (p Project) GetID() string    { return p.ID }
func (p Project) GetName() string  { return p.Name }
func (p Project) GetState() string { return p.State }
func (p Project) GetPosition() int { return p.Position }

// Context implements OrderedItem.

func (c Context) GetID() string    { return c.ID }
func (c Context) GetName() string  { return c.Name }
func (c Context) GetState() string { return c.State }
func (c Context) GetPosition() int { return c.Position }
