package layout

import "testing"

func TestProperName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"tech_priest", "Tech_Priest"},
		{"Blood Angels", "Blood_Angels"},
		{"legion_x", "Legion_X"},
		{"WORLD EATERS", "World_Eaters"},
		{"tau", "Tau"},
		{"logan_grimnar", "Logan_Grimnar"},
		{"3rd_company", "3rd_Company"},
		{"emperor-class", "Emperor-class"},
		{"sons OF horus", "Sons_Of_Horus"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ProperName(tc.in); got != tc.want {
			t.Errorf("ProperName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLegionnaireStem(t *testing.T) {
	if got := LegionnaireStem("Blood Angels", "1"); got != "Blood_Angels_legionnaire_1" {
		t.Errorf("got %q", got)
	}
}

func TestPrimarchStem(t *testing.T) {
	if got := PrimarchStem("legion_x"); got != "Legion_X_primarch" {
		t.Errorf("got %q", got)
	}
}

func TestSplitName(t *testing.T) {
	stem, ext := SplitName("foo.bar.JPG")
	if stem != "foo.bar" || ext != ".JPG" {
		t.Errorf("got (%q, %q)", stem, ext)
	}
	stem, ext = SplitName("noext")
	if stem != "noext" || ext != "" {
		t.Errorf("got (%q, %q)", stem, ext)
	}
}

func TestMarkerChecks(t *testing.T) {
	if !HasMarker("Sanguinius_A4", "_A4") {
		t.Error("expected marker")
	}
	if !HasMarker("old_a4_copy", "_A4") {
		t.Error("expected case-insensitive marker")
	}
	if HasMarker("Sanguinius", "_A4") {
		t.Error("unexpected marker")
	}
	if EndsWithMarker("old_a4_copy", "_A4") {
		t.Error("marker is not a suffix")
	}
	if !EndsWithMarker("Legion_X_primarch_A4", "_A4") {
		t.Error("expected suffix marker")
	}
}

func TestMarkedName(t *testing.T) {
	if got := MarkedName("Legion_X_primarch", "_A4", ".jpeg"); got != "Legion_X_primarch_A4.jpeg" {
		t.Errorf("got %q", got)
	}
}
