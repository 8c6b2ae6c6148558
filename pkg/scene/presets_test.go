package scene

import (
	"errors"
	"testing"

	"github.com/df07/go-tiled-raytracer/pkg/geometry"
)

func TestPresets_AllBuild(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			preset, err := Lookup(name)
			if err != nil {
				t.Fatalf("Lookup(%q) failed: %v", name, err)
			}
			if preset.Name != name {
				t.Errorf("Expected name %q, got %q", name, preset.Name)
			}
			if preset.Description == "" {
				t.Error("Expected a description")
			}
			if preset.Scene.NumObjects() == 0 {
				t.Error("Expected objects in the scene")
			}
			if preset.Width <= 0 || preset.Height <= 0 || preset.SamplesPerPixel <= 0 || preset.MaxDepth <= 0 {
				t.Errorf("Invalid render settings %+v", preset)
			}
			if _, err := geometry.NewCamera(preset.Camera); err != nil {
				t.Errorf("Expected a valid camera, got %v", err)
			}
		})
	}
}

func TestPresets_UnknownName(t *testing.T) {
	_, err := Lookup("does-not-exist")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresets_Book1IsReproducible(t *testing.T) {
	a, _ := Lookup("book1")
	b, _ := Lookup("book1")

	if a.Scene.NumObjects() != b.Scene.NumObjects() {
		t.Fatalf("Expected the same object count, got %d and %d", a.Scene.NumObjects(), b.Scene.NumObjects())
	}
	// Ground plus three large spheres plus up to 22x22 small ones
	if n := a.Scene.NumObjects(); n < 400 || n > 4+22*22 {
		t.Errorf("Unexpected object count %d", n)
	}
	for i := 0; i < a.Scene.NumObjects(); i++ {
		if a.Scene.ObjectBounds(ObjectID(i)) != b.Scene.ObjectBounds(ObjectID(i)) {
			t.Fatalf("Object %d differs between builds", i)
		}
	}
}

func TestPresets_ListMatchesNames(t *testing.T) {
	names := Names()
	list := List()
	if len(list) != len(names) {
		t.Fatalf("Expected %d entries, got %d", len(names), len(list))
	}
	for i := range names {
		if list[i].Name != names[i] {
			t.Errorf("Expected %q at %d, got %q", names[i], i, list[i].Name)
		}
	}
}
