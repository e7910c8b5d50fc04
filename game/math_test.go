package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vecApproxEq(a, b mgl32.Vec3) bool {
	return Float32ApproxEq(a[0], b[0]) && Float32ApproxEq(a[1], b[1]) && Float32ApproxEq(a[2], b[2])
}

func TestRotateYaw(t *testing.T) {
	forward := mgl32.Vec3{0, 1, 0}

	if got := RotateYaw(forward, 0); !vecApproxEq(got, forward) {
		t.Fatalf("zero yaw changed the vector: %v", got)
	}
	if got := RotateYaw(forward, 90); !vecApproxEq(got, mgl32.Vec3{-1, 0, 0}) {
		t.Fatalf("expected 90 degree yaw to point -x, got %v", got)
	}
	if got := RotateYaw(mgl32.Vec3{0, 1, 5}, 180); !Float32ApproxEq(got[2], 5) {
		t.Fatalf("yaw rotation must preserve z, got %v", got)
	}
}

func TestRotatePitchYaw(t *testing.T) {
	forward := mgl32.Vec3{0, 1, 0}

	// Pitching forward motion 90 degrees turns it straight up.
	if got := RotatePitchYaw(forward, 90, 0); !vecApproxEq(got, mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("expected straight up, got %v", got)
	}
	if got := RotatePitchYaw(forward, 0, 0); !vecApproxEq(got, forward) {
		t.Fatalf("identity rotation changed the vector: %v", got)
	}
}

func TestProjectOntoPlane(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	v := mgl32.Vec3{3, 4, -5}
	got := ProjectOntoPlane(v, n)
	if !vecApproxEq(got, mgl32.Vec3{3, 4, 0}) {
		t.Fatalf("expected flattened vector, got %v", got)
	}
	if d := got.Dot(n); !Float32ApproxEq(d, 0) {
		t.Fatalf("projection still has normal component %v", d)
	}
}

func TestProjectOntoLine(t *testing.T) {
	dir := mgl32.Vec3{1, 0, 0}
	got := ProjectOntoLine(mgl32.Vec3{3, 4, 5}, dir)
	if !vecApproxEq(got, mgl32.Vec3{3, 0, 0}) {
		t.Fatalf("expected line component only, got %v", got)
	}
}

func TestAngleBetweenDeg(t *testing.T) {
	if got := AngleBetweenDeg(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}); !Float32ApproxEq(got, 90) {
		t.Fatalf("expected 90 degrees, got %v", got)
	}
	if got := AngleBetweenDeg(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{-1, 0, 0}); !Float32ApproxEq(got, 180) {
		t.Fatalf("expected 180 degrees, got %v", got)
	}
	if got := AngleBetweenDeg(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}); got != 0 {
		t.Fatalf("zero vector should yield 0, got %v", got)
	}
}

func TestIsWalkableNormal(t *testing.T) {
	if !IsWalkableNormal(mgl32.Vec3{0, 0, 1}, WalkableSlopeDot) {
		t.Fatal("flat ground must be walkable")
	}
	// 60 degree incline, steeper than the 49 degree limit.
	if IsWalkableNormal(mgl32.Vec3{0.866, 0, 0.5}, WalkableSlopeDot) {
		t.Fatal("steep slope must not be walkable")
	}
	if IsWalkableNormal(mgl32.Vec3{1, 0, 0}, WalkableSlopeDot) {
		t.Fatal("wall must not be walkable")
	}
	// The threshold is a tunable, not a constant of the test.
	if !IsWalkableNormal(mgl32.Vec3{0.866, 0, 0.5}, 0.4) {
		t.Fatal("a permissive threshold must accept the incline")
	}
	if IsWalkableNormal(mgl32.Vec3{0, 0.1, 0.995}, 0.999) {
		t.Fatal("a strict threshold must refuse a near-flat tilt")
	}
}

func TestLerp(t *testing.T) {
	from := mgl32.Vec3{0, 0, 0}
	to := mgl32.Vec3{10, -4, 2}
	if got := Lerp(from, to, 0); !vecApproxEq(got, from) {
		t.Fatalf("t=0 must return from, got %v", got)
	}
	if got := Lerp(from, to, 1); !vecApproxEq(got, to) {
		t.Fatalf("t=1 must return to, got %v", got)
	}
	if got := Lerp(from, to, 0.5); !vecApproxEq(got, mgl32.Vec3{5, -2, 1}) {
		t.Fatalf("midpoint wrong: %v", got)
	}
}

func TestClampFloat(t *testing.T) {
	if got := ClampFloat(5, 0, 1); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := ClampFloat(-5, 0, 1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := ClampFloat(0.5, 0, 1); got != 0.5 {
		t.Fatalf("expected passthrough, got %v", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
	if got := Mean(nil); got != 0 {
		t.Fatalf("empty mean should be 0, got %v", got)
	}
}

func TestMedian(t *testing.T) {
	if got := Median([]float64{5, 1, 3}); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if got := Median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
}

func TestVariance(t *testing.T) {
	if got := Variance([]float64{2, 4, 4, 4, 5, 5, 7, 9}); got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
	if got := Variance([]float64{3, 3, 3}); got != 0 {
		t.Fatalf("identical samples must have zero variance, got %v", got)
	}
	if got := Variance(nil); got != 0 {
		t.Fatalf("empty variance should be 0, got %v", got)
	}
}

func TestStandardDeviation(t *testing.T) {
	if got := StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9}); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}
