package mesh

import (
	"errors"
	"testing"
)

func TestRegistryPutGet(t *testing.T) {
	r := NewRegistry()
	b := NewBuilder(DefaultLatencyModel())

	m, err := b.Build([]string{"A", "B"}, TopologyLine)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	r.Put(m)

	got, err := r.Get(m.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("Expected mesh %s, got %s", m.ID, got.ID)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("no-such-mesh")
	if !errors.Is(err, ErrUnknownMesh) {
		t.Fatalf("Expected ErrUnknownMesh, got %v", err)
	}
}

func TestRegistryCount(t *testing.T) {
	r := NewRegistry()
	b := NewBuilder(DefaultLatencyModel())

	for i := 0; i < 3; i++ {
		m, err := b.Build([]string{"A", "B", "C"}, TopologyRing)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		r.Put(m)
	}

	if n := r.Count(); n != 3 {
		t.Fatalf("Expected 3 meshes, got %d", n)
	}
	if n := len(r.List()); n != 3 {
		t.Fatalf("Expected 3 listed meshes, got %d", n)
	}
}
