package pkguid

import "testing"

func TestSnowflakeGenerateOrdered(t *testing.T) {
	gen, err := NewSnowflake()
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}

	prev := gen.Generate()
	for i := 0; i < 100; i++ {
		next := gen.Generate()
		if next <= prev {
			t.Fatalf("expected increasing ids, got %d after %d", next, prev)
		}
		prev = next
	}
}

func TestSnowflakeNodeOutOfRange(t *testing.T) {
	if _, err := NewSnowflakeNode(maxNode); err == nil {
		t.Fatal("expected error for node out of range")
	}
}
