// Package camera provides a 2D camera for viewing the tank.
package camera

// Camera maps grid coordinates (one unit per cell) to screen pixels.
// The tank is bounded, so panning stops at its edges.
type Camera struct {
	// Position is the camera center in grid units
	X, Y float32

	// Zoom level relative to the fit scale (1.0 = whole tank visible)
	Zoom float32

	// FitScale is pixels per grid unit at zoom 1
	FitScale float32

	ViewportW, ViewportH float32
	WorldW, WorldH       float32

	MinZoom, MaxZoom float32
}

// New creates a camera that fits a worldW x worldH tank into the viewport.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		WorldW:  worldW,
		WorldH:  worldH,
		MinZoom: 1.0,
		MaxZoom: 8.0,
	}
	c.Resize(viewportW, viewportH)
	c.Reset()
	return c
}

// Scale returns pixels per grid unit at the current zoom.
func (c *Camera) Scale() float32 {
	return c.FitScale * c.Zoom
}

// WorldToScreen converts grid coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	s := c.Scale()
	return c.ViewportW/2 + (wx-c.X)*s, c.ViewportH/2 + (wy-c.Y)*s
}

// ScreenToWorld converts screen coordinates to grid coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	s := c.Scale()
	return c.X + (sx-c.ViewportW/2)/s, c.Y + (sy-c.ViewportH/2)/s
}

// IsVisible returns true if a circle at (wx, wy) with the given radius in
// grid units could be on screen.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX && wy+radius >= minY && wy-radius <= maxY
}

// Resize updates viewport dimensions and the fit scale.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.FitScale = min(viewportW/c.WorldW, viewportH/c.WorldH)
	c.clampPosition()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X += dx / s
	c.Y += dy / s
	c.clampPosition()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampPosition()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the tank center at fit zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the grid-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	s := c.Scale()
	halfW := c.ViewportW / (2 * s)
	halfH := c.ViewportH / (2 * s)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clampPosition keeps the view inside the tank. When the view is wider
// than the tank on an axis, it stays centered on that axis.
func (c *Camera) clampPosition() {
	s := c.Scale()
	if s <= 0 {
		return
	}
	c.X = clampAxis(c.X, c.ViewportW/(2*s), c.WorldW)
	c.Y = clampAxis(c.Y, c.ViewportH/(2*s), c.WorldH)
}

func clampAxis(pos, half, extent float32) float32 {
	if 2*half >= extent {
		return extent / 2
	}
	return clamp(pos, half, extent-half)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
