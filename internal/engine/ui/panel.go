package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/voxelizer/internal/engine/tweak"
)

// DrawPanel draws the panel's controls into the current window.
// Read-only controls are shown disabled.
func DrawPanel(p *tweak.Panel) {
	for _, c := range p.Controls() {
		imgui.BeginDisabledV(c.ReadOnly())
		switch c.Kind {
		case tweak.KindBool:
			v := c.Bool()
			if imgui.Checkbox(c.Name, &v) {
				c.SetBool(v)
			}
		case tweak.KindEnum:
			imgui.Text(c.Name)
			selected := c.Enum()
			for i, label := range c.Labels {
				id := fmt.Sprintf("%s##%s", label, c.Name)
				if imgui.SelectableBoolV(id, i == selected, 0, imgui.NewVec2(0, 0)) && i != selected {
					c.SetEnum(i)
				}
			}
		case tweak.KindFloat:
			imgui.Text(fmt.Sprintf("%s: %s", c.Name, c.String()))
		}
		imgui.EndDisabled()
	}
}
