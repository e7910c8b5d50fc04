package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stride-engine/stride/game"
)

func TestDefaults(t *testing.T) {
	s := Default()
	if s.PhysicsDt != game.DefaultPhysicsDt {
		t.Fatalf("unexpected timestep %v", s.PhysicsDt)
	}
	if s.StepSizeUp != 36 || s.GroundOffset != 1 {
		t.Fatalf("unexpected step tunables: %v %v", s.StepSizeUp, s.GroundOffset)
	}
	if s.Workers < 1 {
		t.Fatalf("worker default must be positive, got %d", s.Workers)
	}
}

func TestGravityUnits(t *testing.T) {
	s := Default()
	want := s.Gravity * s.UnitsPerMeter
	if got := s.GravityUnits(); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.toml")
	body := "step_size_up = 20.0\nworkers = 3\nlos_keep_inactive = 5000000000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.StepSizeUp != 20 {
		t.Fatalf("override ignored, got %v", s.StepSizeUp)
	}
	if s.Workers != 3 {
		t.Fatalf("override ignored, got %d", s.Workers)
	}
	if s.LOSKeepInactive != 5*time.Second {
		t.Fatalf("duration override ignored, got %v", s.LOSKeepInactive)
	}
	// Untouched fields keep their defaults.
	if s.GroundOffset != game.GroundOffset {
		t.Fatalf("default clobbered, got %v", s.GroundOffset)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
