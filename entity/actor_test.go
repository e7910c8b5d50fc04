package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSnapshotSwimLevel(t *testing.T) {
	a := NewActor(1, ActorDef{
		Position:    mgl32.Vec3{0, 0, 5},
		HalfExtents: mgl32.Vec3{30, 30, 60},
	})

	var fd FrameData
	a.Snapshot(&fd, 100, 0.89, mgl32.Vec3{}, false)
	if want := float32(100) - float32(60)*float32(0.89); fd.SwimLevel != want {
		t.Fatalf("expected swim level %v, got %v", want, fd.SwimLevel)
	}
	if fd.WaterLevel != 100 {
		t.Fatalf("water level must pass through, got %v", fd.WaterLevel)
	}

	// The scale is a tunable, not a constant of the snapshot.
	fd.Reset()
	a.Snapshot(&fd, 100, 0.5, mgl32.Vec3{}, false)
	if fd.SwimLevel != 70 {
		t.Fatalf("expected swim level 70, got %v", fd.SwimLevel)
	}
}
