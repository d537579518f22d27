package tweak

import "testing"

func TestPanelControls(t *testing.T) {
	p := NewPanel("Voxelizer")

	on := false
	mode := 0
	ms := 1.2345

	p.AddReadOnlyFloat("Render time (ms)", 2, func() float64 { return ms })
	p.AddEnum("Mode", []string{"A", "B"}, func() int { return mode }, func(i int) { mode = i })
	p.AddBool("Flag", func() bool { return on }, func(v bool) { on = v })

	if got := len(p.Controls()); got != 3 {
		t.Fatalf("got %d controls, want 3", got)
	}
	if p.Controls()[0].Name != "Render time (ms)" {
		t.Error("controls not in registration order")
	}

	tests := []struct {
		name string
		want string
	}{
		{"Render time (ms)", "1.23"},
		{"Mode", "A"},
		{"Flag", "false"},
	}
	for _, tt := range tests {
		c, ok := p.Lookup(tt.name)
		if !ok {
			t.Fatalf("control %q missing", tt.name)
		}
		if c.String() != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, c.String(), tt.want)
		}
	}

	flag, _ := p.Lookup("Flag")
	if !flag.SetBool(true) || !on {
		t.Error("bool edit not applied")
	}
	m, _ := p.Lookup("Mode")
	if !m.SetEnum(1) || mode != 1 || m.String() != "B" {
		t.Error("enum edit not applied")
	}
	if m.SetEnum(2) {
		t.Error("out of range enum edit accepted")
	}
	rt, _ := p.Lookup("Render time (ms)")
	if !rt.ReadOnly() {
		t.Error("float control should be read-only")
	}
}

func TestReadOnlyRejectsEdits(t *testing.T) {
	p := NewPanel("test")
	called := false
	p.AddBool("Locked", func() bool { return false }, func(bool) { called = true }, ReadOnlyIf(true))

	c, _ := p.Lookup("Locked")
	if c.SetBool(true) || called {
		t.Error("read-only control accepted an edit")
	}
}

func TestReRegisterReplaces(t *testing.T) {
	p := NewPanel("test")
	p.AddBool("X", func() bool { return false }, nil)
	p.AddBool("X", func() bool { return true }, func(bool) {})

	if len(p.Controls()) != 1 {
		t.Fatalf("got %d controls, want 1", len(p.Controls()))
	}
	c, _ := p.Lookup("X")
	if !c.Bool() || c.ReadOnly() {
		t.Errorf("control not replaced: value=%v readOnly=%v", c.Bool(), c.ReadOnly())
	}
}
