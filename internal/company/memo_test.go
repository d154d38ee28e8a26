package company

import "testing"

func TestMemo_EvictsOldest(t *testing.T) {
	m := newMemo(2)
	m.put("a.com", "A")
	m.put("b.com", "")
	m.put("a.com", "A2")
	m.put("c.com", "C")

	if _, ok := m.get("a.com"); ok {
		t.Fatal("expected a.com to be evicted")
	}
	if name, ok := m.get("b.com"); !ok || name != "" {
		t.Fatalf("expected negative entry for b.com, got %q (ok=%v)", name, ok)
	}
	if name, ok := m.get("c.com"); !ok || name != "C" {
		t.Fatalf("expected C, got %q (ok=%v)", name, ok)
	}
	if m.len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.len())
	}
}
