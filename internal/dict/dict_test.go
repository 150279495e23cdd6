package dict

import "testing"

func TestInternStableIDs(t *testing.T) {
	d := New(2, "*")

	a1 := d.Intern(0, "25")
	a2 := d.Intern(0, "27")
	a3 := d.Intern(0, "25")

	if a1 != a3 {
		t.Fatalf("expected stable id for repeated value, got %d and %d", a1, a3)
	}
	if a1 == a2 {
		t.Fatalf("expected distinct ids for distinct values")
	}
}

func TestDecodeSuppression(t *testing.T) {
	d := New(1, "*")
	d.Intern(0, "25")

	if got := d.Decode(0, SuppressionID); got != "*" {
		t.Fatalf("decode(0) = %q, want suppression string", got)
	}
}

func TestInternSuppressionStringCollapsesToZero(t *testing.T) {
	d := New(1, "*")
	id := d.Intern(0, "*")
	if id != SuppressionID {
		t.Fatalf("interning the suppression string itself must yield id 0, got %d", id)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	d := New(2, "*")
	rows := [][]string{
		{"25", "M"},
		{"27", "F"},
		{"25", "M"},
	}
	enc := Encode(d, rows)

	if enc.N() != 3 {
		t.Fatalf("N() = %d, want 3", enc.N())
	}
	if enc.Rows[0][0] != enc.Rows[2][0] {
		t.Fatalf("expected row 0 and row 2 to share the same age id")
	}
	if d.Decode(0, enc.Rows[0][0]) != "25" {
		t.Fatalf("decode roundtrip failed for age column")
	}
	if d.Decode(1, enc.Rows[1][1]) != "F" {
		t.Fatalf("decode roundtrip failed for sex column")
	}
}

func TestCardinalityIncludesSuppressionSentinel(t *testing.T) {
	d := New(1, "*")
	d.Intern(0, "a")
	d.Intern(0, "b")
	if got := d.Cardinality(0); got != 3 {
		t.Fatalf("Cardinality = %d, want 3 (suppression + 2 values)", got)
	}
}
