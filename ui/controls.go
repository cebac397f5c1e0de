package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlValues are the solver settings editable from the controls panel.
type ControlValues struct {
	Gravity     float32
	Iterations  int
	Relaxation  float32
	Stiffness   float32
	DensityBias bool
	RedBlack    bool
}

// ControlEvents reports what the user changed this frame.
type ControlEvents struct {
	Changed bool
	Reset   bool
}

// Slider ranges.
const (
	GravityMin, GravityMax       = -20, 20
	IterationsMin, IterationsMax = 0, 200
	RelaxationMin, RelaxationMax = 0.1, 1.95
	StiffnessMin, StiffnessMax   = 0, 5
)

// ControlsPanel renders raygui sliders and buttons for solver settings.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel.
func (c *ControlsPanel) Contains(px, py float32) bool {
	if !c.visible {
		return false
	}
	return px >= float32(c.x) && px <= float32(c.x+c.width) &&
		py >= float32(c.y) && py <= float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	return c.renderer.Theme.Padding*2 + 24 + 4*38 + 3*34
}

// slider draws a labelled slider and returns the new value.
func (c *ControlsPanel) slider(y float32, label, format string, value, lo, hi float32) float32 {
	r := c.renderer
	x := float32(c.x + r.Theme.Padding)
	w := float32(c.width - r.Theme.Padding*2 - 60)

	rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y + 14, Width: w, Height: 16},
		"", "",
		value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x+w+8), int32(y+15), r.Theme.FontSize, r.Theme.ValueColor)
	return v
}

// Draw renders the panel, applies edits to v and reports what changed.
func (c *ControlsPanel) Draw(v *ControlValues) ControlEvents {
	var ev ControlEvents
	if !c.visible {
		return ev
	}

	r := c.renderer
	r.DrawPanel(c.x, c.y, c.width, c.height())

	y := float32(c.y + r.Theme.Padding)
	rl.DrawText("Solver Controls", c.x+r.Theme.Padding, int32(y), 16, rl.White)
	y += 24

	if g := c.slider(y, "Gravity", "%.1f", v.Gravity, GravityMin, GravityMax); g != v.Gravity {
		v.Gravity = g
		ev.Changed = true
	}
	y += 38

	if n := int(c.slider(y, "Iterations", "%.0f", float32(v.Iterations), IterationsMin, IterationsMax)); n != v.Iterations {
		v.Iterations = n
		ev.Changed = true
	}
	y += 38

	if w := c.slider(y, "Relaxation", "%.2f", v.Relaxation, RelaxationMin, RelaxationMax); w != v.Relaxation {
		v.Relaxation = w
		ev.Changed = true
	}
	y += 38

	if k := c.slider(y, "Stiffness", "%.2f", v.Stiffness, StiffnessMin, StiffnessMax); k != v.Stiffness {
		v.Stiffness = k
		ev.Changed = true
	}
	y += 38

	x := float32(c.x + r.Theme.Padding)
	bw := float32(c.width - r.Theme.Padding*2)

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 26}, "Density bias: "+onOff(v.DensityBias)) {
		v.DensityBias = !v.DensityBias
		ev.Changed = true
	}
	y += 34

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 26}, "Ordering: "+orderingLabel(v.RedBlack)) {
		v.RedBlack = !v.RedBlack
		ev.Changed = true
	}
	y += 34

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 26}, "Reset particles") {
		ev.Reset = true
	}

	return ev
}

func orderingLabel(redBlack bool) string {
	if redBlack {
		return "red-black"
	}
	return "gauss-seidel"
}
