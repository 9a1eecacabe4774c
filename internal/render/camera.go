package render

import "snarl/internal/gamemap"

// Camera translates between level points and screen cells. Every level cell
// is two terminal columns wide so emoji and spaced ASCII line up the same way.
type Camera struct {
	Offset     gamemap.Point
	ViewWidth  int // in terminal columns
	ViewHeight int // in terminal rows
}

// NewCamera returns a camera whose top-left shows origin.
func NewCamera(origin gamemap.Point, viewW, viewH int) *Camera {
	return &Camera{Offset: origin, ViewWidth: viewW, ViewHeight: viewH}
}

// Resize changes the viewport without moving the camera.
func (c *Camera) Resize(viewW, viewH int) {
	c.ViewWidth, c.ViewHeight = viewW, viewH
}

// Fits reports whether r is entirely inside the viewport when the camera's
// top-left is r's top-left.
func (c *Camera) Fits(r gamemap.Rect) bool {
	return (r.X2-r.X1+1)*2 <= c.ViewWidth && r.Y2-r.Y1+1 <= c.ViewHeight
}

// Frame positions the camera on r: its top-left when it fits, otherwise
// centred on focus.
func (c *Camera) Frame(r gamemap.Rect, focus gamemap.Point) {
	if c.Fits(r) {
		c.Offset = gamemap.Pt(r.X1, r.Y1)
		return
	}
	c.Center(focus)
}

// Center moves the camera so that p is in the middle of the viewport.
func (c *Camera) Center(p gamemap.Point) {
	c.Offset = gamemap.Pt(p.X-(c.ViewWidth/2)/2, p.Y-c.ViewHeight/2)
}

// WorldToScreen converts a level point to a screen cell. visible is false
// when the cell falls outside the viewport.
func (c *Camera) WorldToScreen(p gamemap.Point) (sx, sy int, visible bool) {
	sx = (p.X - c.Offset.X) * 2
	sy = p.Y - c.Offset.Y
	visible = sx >= 0 && sx < c.ViewWidth && sy >= 0 && sy < c.ViewHeight
	return
}

// ScreenToWorld converts a screen cell to a level point.
func (c *Camera) ScreenToWorld(sx, sy int) gamemap.Point {
	return gamemap.Pt(sx/2+c.Offset.X, sy+c.Offset.Y)
}
