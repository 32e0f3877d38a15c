package words

import (
	"os"
	"path/filepath"
	"testing"
)

func writeWordFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing word file: %v", err)
	}
	return path
}

func TestFileProvider_NextWord(t *testing.T) {
	en := writeWordFile(t, "en.txt", "apple\nbanana\ncherry\n")
	ru := writeWordFile(t, "ru.txt", "арбуз\n")

	provider, err := NewFileProvider(map[string]string{"en": en, "ru": ru}, "en", "word")
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}

	known := map[string]bool{"apple": true, "banana": true, "cherry": true}
	for i := 0; i < 20; i++ {
		word, err := provider.NextWord("en")
		if err != nil {
			t.Fatalf("NextWord failed: %v", err)
		}
		if !known[word] {
			t.Fatalf("NextWord returned %q, not from the list", word)
		}
	}

	word, err := provider.NextWord("ru")
	if err != nil {
		t.Fatalf("NextWord failed: %v", err)
	}
	if word != "арбуз" {
		t.Errorf("Expected the only Russian word, got %q", word)
	}
}

func TestFileProvider_UnknownLocaleFallsBack(t *testing.T) {
	en := writeWordFile(t, "en.txt", "apple\n")

	provider, err := NewFileProvider(map[string]string{"en": en}, "en", "word")
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}

	word, err := provider.NextWord("fr")
	if err != nil {
		t.Fatalf("NextWord failed: %v", err)
	}
	if word != "apple" {
		t.Errorf("Unknown locale should use the default list, got %q", word)
	}
}

func TestFileProvider_SkipsBlankLines(t *testing.T) {
	en := writeWordFile(t, "en.txt", "\napple\n\n  \nbanana\n")

	provider, err := NewFileProvider(map[string]string{"en": en}, "en", "word")
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}
	if len(provider.files["en"]) != 2 {
		t.Errorf("Expected 2 words after trimming, got %d", len(provider.files["en"]))
	}
}

func TestFileProvider_MissingDefaultLocale(t *testing.T) {
	ru := writeWordFile(t, "ru.txt", "арбуз\n")

	if _, err := NewFileProvider(map[string]string{"ru": ru}, "en", "word"); err == nil {
		t.Fatal("Provider without the default locale's list must not construct")
	}
}

func TestFileProvider_EmptyFileRejected(t *testing.T) {
	en := writeWordFile(t, "en.txt", "\n\n")

	if _, err := NewFileProvider(map[string]string{"en": en}, "en", "word"); err == nil {
		t.Fatal("Empty word file must be rejected")
	}
}

func TestFileProvider_MissingFileRejected(t *testing.T) {
	if _, err := NewFileProvider(map[string]string{"en": "/does/not/exist.txt"}, "en", "word"); err == nil {
		t.Fatal("Unreadable word file must be rejected")
	}
}
