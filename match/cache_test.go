package match

import (
	"testing"
)

func TestCompile_PrefixAndCase(t *testing.T) {
	pattern, err := Compile("crocodile")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	matching := []string{
		"crocodile",
		"Crocodile",
		"CROCODILE!",
		"crocodile, right?",
	}
	for _, text := range matching {
		if !pattern.MatchString(text) {
			t.Errorf("Expected %q to match", text)
		}
	}

	nonMatching := []string{
		"a crocodile",
		"croco",
		"is it a crocodile?",
		"",
	}
	for _, text := range nonMatching {
		if pattern.MatchString(text) {
			t.Errorf("Expected %q not to match", text)
		}
	}
}

func TestCompile_QuotesRegexMeta(t *testing.T) {
	pattern, err := Compile("c++")
	if err != nil {
		t.Fatalf("Compile should quote regex metacharacters: %v", err)
	}
	if !pattern.MatchString("C++ is the answer") {
		t.Error("Literal word with metacharacters should match")
	}
	if pattern.MatchString("cc") {
		t.Error("The word must be matched literally, not as a regex")
	}
}

func TestCache_GetOrCompileCaches(t *testing.T) {
	cache := NewCache()

	first, err := cache.GetOrCompile("game1", "apple")
	if err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}

	// The word argument is ignored on a hit; same entry comes back.
	second, err := cache.GetOrCompile("game1", "banana")
	if err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}
	if first != second {
		t.Error("Expected the cached pattern instance on a hit")
	}
	if !second.MatchString("apple pie") {
		t.Error("Cached pattern should still match the original word")
	}
}

func TestCache_InvalidateThenRecompile(t *testing.T) {
	cache := NewCache()

	if _, err := cache.GetOrCompile("game1", "apple"); err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}
	cache.Invalidate("game1")
	if cache.Len() != 0 {
		t.Fatalf("Expected empty cache after invalidate, got %d entries", cache.Len())
	}

	// A miss recompiles from the durable word, transparently.
	pattern, err := cache.GetOrCompile("game1", "banana")
	if err != nil {
		t.Fatalf("GetOrCompile after invalidate failed: %v", err)
	}
	if !pattern.MatchString("banana split") {
		t.Error("Recompiled pattern should match the new word")
	}
}

func TestCache_InvalidateUnknownGame(t *testing.T) {
	cache := NewCache()
	cache.Invalidate("missing")
	if cache.Len() != 0 {
		t.Error("Invalidating an unknown game must not create entries")
	}
}
