package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
)

func testVision() Vision {
	return Vision{Cone: visionCone(), Range: 1000}
}

// ---------- Activation ----------

func TestActivationNoFood(t *testing.T) {
	g := NewFoodGrid(500, 10)
	act, _ := testVision().Activation(g, Pose{}, nil)
	if act != 0 {
		t.Errorf("activation with empty grid = %f, want 0", act)
	}
}

func TestActivationFoodAtEye(t *testing.T) {
	es := newEntities(1)
	g := NewFoodGrid(500, 10)
	eye := Pose{Pos: Vec2{300, -200}, Angle: 0.7}
	g.Insert(es[0], eye.Pos)

	act, _ := testVision().Activation(g, eye, nil)
	if act != 1 {
		t.Errorf("activation with food at the eye = %f, want 1", act)
	}
}

func TestActivationFalloff(t *testing.T) {
	tests := []struct {
		name string
		dist float32
		want float32
	}{
		{"quarter range", 250, 0.75},
		{"half range", 500, 0.5},
		{"at range", 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := newEntities(1)
			g := NewFoodGrid(500, 10)
			g.Insert(es[0], Vec2{0, -tt.dist})

			act, _ := testVision().Activation(g, Pose{}, nil)
			if math.Abs(float64(act-tt.want)) > 1e-6 {
				t.Errorf("activation at distance %v = %f, want %f", tt.dist, act, tt.want)
			}
		})
	}
}

func TestActivationTakesNearest(t *testing.T) {
	es := newEntities(3)
	g := NewFoodGrid(500, 10)
	g.Insert(es[0], Vec2{0, -900})
	g.Insert(es[1], Vec2{0, -200})
	g.Insert(es[2], Vec2{50, -600})

	act, _ := testVision().Activation(g, Pose{}, nil)
	if math.Abs(float64(act-0.8)) > 1e-6 {
		t.Errorf("activation = %f, want 0.8 from the nearest item", act)
	}
}

func TestActivationIgnoresFoodOutsideCone(t *testing.T) {
	es := newEntities(2)
	g := NewFoodGrid(500, 10)
	g.Insert(es[0], Vec2{0, 100})   // behind
	g.Insert(es[1], Vec2{600, -50}) // beside the narrow end

	act, _ := testVision().Activation(g, Pose{}, nil)
	if act != 0 {
		t.Errorf("activation = %f, want 0", act)
	}
}

// missingIndex returns a handle it cannot locate.
type missingIndex struct{ e ecs.Entity }

func (m missingIndex) QueryShape(_ Vec2, _ float32, _ Shape, dst []ecs.Entity) []ecs.Entity {
	return append(dst, m.e)
}

func (m missingIndex) Position(ecs.Entity) (Vec2, bool) { return Vec2{}, false }

func TestActivationSkipsUnlocatableHits(t *testing.T) {
	es := newEntities(1)
	act, _ := testVision().Activation(missingIndex{es[0]}, Pose{}, nil)
	if act != 0 {
		t.Errorf("activation = %f, want 0 for unlocatable hit", act)
	}
}

// ---------- Organ placement ----------

func TestOrganPoseRotatesWithBody(t *testing.T) {
	offset := OrganOffset(0, 50) // straight ahead of the body
	pose := OrganPose(Vec2{100, 100}, math.Pi/2, offset, 0)

	if math.Abs(float64(pose.Pos.X-150)) > 1e-3 || math.Abs(float64(pose.Pos.Y-100)) > 1e-3 {
		t.Errorf("organ position = %v, want {150 100}", pose.Pos)
	}
	if math.Abs(float64(pose.Angle-math.Pi/2)) > 1e-6 {
		t.Errorf("organ angle = %f, want pi/2", pose.Angle)
	}
}
