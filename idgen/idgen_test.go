package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_Length(t *testing.T) {
	gen := NanoID(8)
	id := gen()
	if len(id) != 8 {
		t.Fatalf("length: got %d, want 8", len(id))
	}
	for _, r := range id {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'z')) {
			t.Errorf("character %q outside base-36 alphabet", r)
		}
	}
}

func TestNanoID_Unique(t *testing.T) {
	gen := NanoID(12)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate ID after %d draws: %s", i, id)
		}
		seen[id] = true
	}
}

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	if len(id) != 36 {
		t.Fatalf("length: got %d, want 36", len(id))
	}
	if strings.Count(id, "-") != 4 {
		t.Errorf("expected 4 dashes in %q", id)
	}
	// Version nibble.
	if id[14] != '7' {
		t.Errorf("version nibble: got %c, want 7", id[14])
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("audit_", NanoID(6))
	id := gen()
	if !strings.HasPrefix(id, "audit_") {
		t.Fatalf("missing prefix: %s", id)
	}
	if len(id) != len("audit_")+6 {
		t.Errorf("length: got %d", len(id))
	}
}

func TestNew_UsesDefault(t *testing.T) {
	if New() == New() {
		t.Fatal("New should produce unique IDs")
	}
}
