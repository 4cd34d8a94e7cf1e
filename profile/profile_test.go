package profile

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	c := New(WithMode("cpu"), WithPath("/tmp/out"), WithQuiet(true), WithMode("heap"))

	want := Config{Mode: "heap", Path: "/tmp/out", Quiet: true}
	if c != want {
		t.Errorf("New() = %+v, want %+v", c, want)
	}
}

func TestConfig_Start_Noop(t *testing.T) {
	for _, c := range []Config{
		{},
		New(WithPath(t.TempDir())),
		New(WithMode("bogus"), WithPath(t.TempDir())),
	} {
		s := c.Start()
		if _, ok := s.(ignore); !ok {
			t.Errorf("%+v: Start() = %T, want no-op", c, s)
		}

		s.Stop()
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("Modes() = %v without the %s tag", modes, Tag)
		}

		return
	}

	if !slices.Contains(modes, "cpu") || !slices.IsSorted(modes) {
		t.Errorf("Modes() = %v", modes)
	}
}
