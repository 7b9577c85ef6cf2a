package signature

import "testing"

func TestIDAllocator_Sequential(t *testing.T) {
	var alloc IDAllocator
	tests := []ID{1, 2, 3, 4}
	for _, want := range tests {
		got := alloc.Next()
		if got != want {
			t.Fatalf("Next() = %d, want %d", got, want)
		}
	}
}

func TestIdentity_DistinguishesMatchFile(t *testing.T) {
	a := Signature{Raw: "3:abc:def", MatchFile: "known_a.txt"}
	b := Signature{Raw: "3:abc:def", MatchFile: "known_b.txt"}

	if a.Identity() == b.Identity() {
		t.Fatalf("expected distinct identities for differing match files")
	}

	c := Signature{Raw: "3:abc:def", MatchFile: "known_a.txt"}
	if a.Identity() != c.Identity() {
		t.Fatalf("expected equal identities for identical (raw, match_file)")
	}
}

func TestShortComponents(t *testing.T) {
	tests := []struct {
		name     string
		s1, s2   string
		wantS1   bool
		wantS2   bool
	}{
		{"both short", "abcde", "fg", true, true},
		{"both long", "abcdefgh", "ijklmnop", false, false},
		{"s1 short only", "abc", "ijklmnop", true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Signature{S1: tc.s1, S2: tc.s2}
			if got := s.ShortS1(); got != tc.wantS1 {
				t.Errorf("ShortS1() = %v, want %v", got, tc.wantS1)
			}
			if got := s.ShortS2(); got != tc.wantS2 {
				t.Errorf("ShortS2() = %v, want %v", got, tc.wantS2)
			}
		})
	}
}
