package systems

// Shape is a collision footprint in local coordinates. It is placed in the
// world by an origin and a counter-clockwise rotation.
type Shape interface {
	// Bounds returns the world-space axis-aligned box of the placed shape.
	Bounds(origin Vec2, angle float32) (lo, hi Vec2)
	// OverlapsCircle reports whether the placed shape touches or intersects
	// the circle at center with radius r.
	OverlapsCircle(origin Vec2, angle float32, center Vec2, r float32) bool
}

// Circle is a disc centred on the local origin.
type Circle struct {
	Radius float32
}

// Bounds implements Shape.
func (c Circle) Bounds(origin Vec2, _ float32) (Vec2, Vec2) {
	return Vec2{origin.X - c.Radius, origin.Y - c.Radius},
		Vec2{origin.X + c.Radius, origin.Y + c.Radius}
}

// OverlapsCircle implements Shape. Touching circles overlap.
func (c Circle) OverlapsCircle(origin Vec2, _ float32, center Vec2, r float32) bool {
	reach := c.Radius + r
	return distanceSq(origin, center) <= reach*reach
}

// ConvexPolygon is a convex polygon with vertices in local coordinates,
// listed in either winding order.
type ConvexPolygon struct {
	Points []Vec2
}

// Trapezoid builds the vision-cone footprint: a near edge of half width nearHalf
// at depth nearDepth and a far edge of half width farHalf at depth farDepth,
// both along local -Y.
func Trapezoid(nearHalf, nearDepth, farHalf, farDepth float32) ConvexPolygon {
	return ConvexPolygon{Points: []Vec2{
		{-nearHalf, -nearDepth},
		{nearHalf, -nearDepth},
		{farHalf, -farDepth},
		{-farHalf, -farDepth},
	}}
}

// Bounds implements Shape.
func (p ConvexPolygon) Bounds(origin Vec2, angle float32) (Vec2, Vec2) {
	if len(p.Points) == 0 {
		return origin, origin
	}
	first := p.Points[0].Rotate(angle).Add(origin)
	lo, hi := first, first
	for _, pt := range p.Points[1:] {
		w := pt.Rotate(angle).Add(origin)
		lo.X = min(lo.X, w.X)
		lo.Y = min(lo.Y, w.Y)
		hi.X = max(hi.X, w.X)
		hi.Y = max(hi.Y, w.Y)
	}
	return lo, hi
}

// OverlapsCircle implements Shape. The circle overlaps when its centre lies
// inside the polygon or any edge comes within r of the centre.
func (p ConvexPolygon) OverlapsCircle(origin Vec2, angle float32, center Vec2, r float32) bool {
	n := len(p.Points)
	if n == 0 {
		return false
	}
	local := center.Sub(origin).Rotate(-angle)

	if n >= 3 && p.contains(local) {
		return true
	}

	rSq := r * r
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		if segmentDistanceSq(local, a, b) <= rSq {
			return true
		}
	}
	return false
}

// contains reports whether q lies inside or on the polygon.
func (p ConvexPolygon) contains(q Vec2) bool {
	var pos, neg bool
	n := len(p.Points)
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		c := b.Sub(a).Cross(q.Sub(a))
		if c > 0 {
			pos = true
		} else if c < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

// segmentDistanceSq returns the squared distance from q to segment ab.
func segmentDistanceSq(q, a, b Vec2) float32 {
	ab := b.Sub(a)
	lenSq := ab.LenSq()
	if lenSq == 0 {
		return distanceSq(q, a)
	}
	t := clamp01(q.Sub(a).Dot(ab) / lenSq)
	return distanceSq(q, a.Add(ab.Scale(t)))
}
