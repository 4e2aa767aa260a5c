package similarity

import "testing"

func TestScore_Reflexive(t *testing.T) {
	for _, s := range []string{"", "a", "acme plumbing", "45 king st, toronto", "４１６"} {
		if got := Score(s, s); got != 1.0 {
			t.Fatalf("Score(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestScore_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"acme plumbing", "acme plumbing inc"},
		{"joes roofing", "joe's roofing"},
		{"", "abc"},
		{"kitten", "sitting"},
	}
	for _, p := range pairs {
		ab := Score(p[0], p[1])
		ba := Score(p[1], p[0])
		if ab != ba {
			t.Fatalf("Score(%q,%q)=%v but Score(%q,%q)=%v", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestScore_EmptyInputs(t *testing.T) {
	if got := Score("", ""); got != 1.0 {
		t.Fatalf("Score of two empty strings = %v, want 1.0", got)
	}
	if got := Score("abc", ""); got >= 1.0 {
		t.Fatalf("Score(\"abc\", \"\") = %v, want < 1.0", got)
	}
	if got := Score("abc", ""); got != 0.0 {
		t.Fatalf("Score(\"abc\", \"\") = %v, want 0.0 (3 deletions over maxLen 3)", got)
	}
}

func TestScore_KnownDistances(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		// distance 3 over maxLen 7
		{"kitten", "sitting", 4.0 / 7.0},
		// one deletion over maxLen 13
		{"joe's roofing", "joes roofing", 12.0 / 13.0},
		// completely different
		{"abc", "xyz", 0.0},
		// single substitution
		{"acme", "acmo", 0.75},
	}
	for _, tt := range tests {
		got := Score(tt.a, tt.b)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Score(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestScore_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "completely different thing"},
		{"x", ""},
		{"45 king st, toronto", "45 king street, toronto, on"},
	}
	for _, p := range pairs {
		got := Score(p[0], p[1])
		if got < 0.0 || got > 1.0 {
			t.Fatalf("Score(%q, %q) = %v out of [0,1]", p[0], p[1], got)
		}
	}
}
