package licensekey

import (
	"strings"
	"testing"
)

func TestGenerateShape(t *testing.T) {
	key, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(key) != 19 {
		t.Errorf("key length = %d, want 19", len(key))
	}
	if !Pattern.MatchString(key) {
		t.Errorf("key %q does not match %v", key, Pattern)
	}
	groups := strings.Split(key, "-")
	if len(groups) != 4 {
		t.Fatalf("groups = %d, want 4", len(groups))
	}
	for _, g := range groups {
		if len(g) != 4 {
			t.Errorf("group %q length = %d, want 4", g, len(g))
		}
		for _, c := range g {
			if !strings.ContainsRune(alphabet, c) {
				t.Errorf("group %q contains %q outside alphabet", g, c)
			}
		}
	}
}

// The keyspace is 36^16, so 10,000 keys colliding is ~10^-13 likely. Any
// duplicate here is a regression in the generator, not bad luck.
func TestGenerateNoDuplicates(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		key, err := Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, ok := seen[key]; ok {
			t.Fatalf("duplicate key %q after %d generations", key, i)
		}
		seen[key] = struct{}{}
	}
}
