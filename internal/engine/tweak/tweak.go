// Package tweak is a registry of live-tunable debug controls. Subsystems
// register named controls backed by getter and setter callbacks; a UI
// backend (see internal/engine/ui) draws and edits them.
package tweak

import (
	"fmt"
	"strconv"
)

// Registry is the surface subsystems register controls on.
type Registry interface {
	AddBool(name string, get func() bool, set func(bool), opts ...Option)
	AddEnum(name string, labels []string, get func() int, set func(int), opts ...Option)
	AddReadOnlyFloat(name string, precision int, get func() float64)
}

// Kind is the value type of a control.
type Kind int

const (
	KindBool Kind = iota
	KindEnum
	KindFloat
)

// Option configures a control.
type Option func(*Control)

// ReadOnly makes a control display-only.
func ReadOnly() Option {
	return func(c *Control) { c.readOnly = true }
}

// ReadOnlyIf makes a control display-only when cond holds.
func ReadOnlyIf(cond bool) Option {
	return func(c *Control) { c.readOnly = c.readOnly || cond }
}

// Control is one registered control.
type Control struct {
	Name      string
	Kind      Kind
	Labels    []string
	Precision int

	readOnly bool
	getBool  func() bool
	setBool  func(bool)
	getEnum  func() int
	setEnum  func(int)
	getFloat func() float64
}

// ReadOnly reports whether the control rejects edits.
func (c *Control) ReadOnly() bool { return c.readOnly }

// Bool returns the current value of a bool control.
func (c *Control) Bool() bool {
	if c.getBool == nil {
		return false
	}
	return c.getBool()
}

// SetBool edits a bool control. It reports false if the edit was rejected.
func (c *Control) SetBool(v bool) bool {
	if c.Kind != KindBool || c.readOnly || c.setBool == nil {
		return false
	}
	c.setBool(v)
	return true
}

// Enum returns the selected index of an enum control.
func (c *Control) Enum() int {
	if c.getEnum == nil {
		return 0
	}
	return c.getEnum()
}

// SetEnum selects an index. It reports false if the edit was rejected.
func (c *Control) SetEnum(i int) bool {
	if c.Kind != KindEnum || c.readOnly || c.setEnum == nil || i < 0 || i >= len(c.Labels) {
		return false
	}
	c.setEnum(i)
	return true
}

// Float returns the value of a float control.
func (c *Control) Float() float64 {
	if c.getFloat == nil {
		return 0
	}
	return c.getFloat()
}

// String formats the control's current value.
func (c *Control) String() string {
	switch c.Kind {
	case KindBool:
		return strconv.FormatBool(c.Bool())
	case KindEnum:
		if i := c.Enum(); i >= 0 && i < len(c.Labels) {
			return c.Labels[i]
		}
		return strconv.Itoa(c.Enum())
	case KindFloat:
		return strconv.FormatFloat(c.Float(), 'f', c.Precision, 64)
	default:
		return fmt.Sprintf("Kind(%d)", int(c.Kind))
	}
}

// Panel is a titled, ordered set of controls implementing Registry.
type Panel struct {
	Title    string
	controls []*Control
	byName   map[string]*Control
}

// NewPanel creates an empty panel.
func NewPanel(title string) *Panel {
	return &Panel{Title: title, byName: make(map[string]*Control)}
}

func (p *Panel) add(c *Control, opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
	if old, ok := p.byName[c.Name]; ok {
		*old = *c
		return
	}
	p.controls = append(p.controls, c)
	p.byName[c.Name] = c
}

// AddBool implements Registry. Re-registering a name replaces the control.
func (p *Panel) AddBool(name string, get func() bool, set func(bool), opts ...Option) {
	c := &Control{Name: name, Kind: KindBool, getBool: get, setBool: set}
	if set == nil {
		c.readOnly = true
	}
	p.add(c, opts)
}

// AddEnum implements Registry.
func (p *Panel) AddEnum(name string, labels []string, get func() int, set func(int), opts ...Option) {
	c := &Control{Name: name, Kind: KindEnum, Labels: labels, getEnum: get, setEnum: set}
	if set == nil {
		c.readOnly = true
	}
	p.add(c, opts)
}

// AddReadOnlyFloat implements Registry.
func (p *Panel) AddReadOnlyFloat(name string, precision int, get func() float64) {
	p.add(&Control{Name: name, Kind: KindFloat, Precision: precision, getFloat: get, readOnly: true}, nil)
}

// Controls returns the controls in registration order.
func (p *Panel) Controls() []*Control {
	return p.controls
}

// Lookup finds a control by name.
func (p *Panel) Lookup(name string) (*Control, bool) {
	c, ok := p.byName[name]
	return c, ok
}

var _ Registry = (*Panel)(nil)
