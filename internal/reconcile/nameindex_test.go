package reconcile

import "testing"

func TestNameIndexInsertLookup(t *testing.T) {
	x := NewNameIndex()

	if !x.Insert("Checkout", "hop-1") {
		t.Error("first Insert returned false")
	}
	id, ok := x.Lookup("Checkout")
	if !ok || id != "hop-1" {
		t.Errorf("Lookup = %q, %v; want hop-1, true", id, ok)
	}

	if _, ok := x.Lookup("Shipping"); ok {
		t.Error("Lookup of unknown name succeeded")
	}
	if x.Len() != 1 {
		t.Errorf("Len = %d, want 1", x.Len())
	}
}

func TestNameIndexFirstRegistrationWins(t *testing.T) {
	x := NewNameIndex()
	x.Insert("Checkout", "hop-1")

	if x.Insert("Checkout", "hop-2") {
		t.Error("duplicate Insert returned true")
	}
	if id, _ := x.Lookup("Checkout"); id != "hop-1" {
		t.Errorf("Lookup = %q, want hop-1 (mapping overwritten)", id)
	}
}

func TestNameIndexCaseAndSpaceFolding(t *testing.T) {
	x := NewNameIndex()
	x.Insert("Checkout Flow", "hop-1")

	for _, name := range []string{"checkout flow", "CHECKOUT FLOW", "  Checkout Flow  "} {
		if id, ok := x.Lookup(name); !ok || id != "hop-1" {
			t.Errorf("Lookup(%q) = %q, %v; want hop-1, true", name, id, ok)
		}
	}
	if x.Insert("CHECKOUT FLOW", "hop-2") {
		t.Error("case variant Insert returned true")
	}
}
