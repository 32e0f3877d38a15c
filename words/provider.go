// words/provider.go
package words

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Provider picks a secret word for a locale.
type Provider interface {
	NextWord(locale string) (string, error)
}

// FileProvider reads one-word-per-line files, one per locale. Unknown
// locales fall back to the default locale; if that ever yields nothing
// a fixed default word is used rather than failing game creation.
type FileProvider struct {
	files         map[string][]string
	defaultLocale string
	defaultWord   string
}

func NewFileProvider(files map[string]string, defaultLocale, defaultWord string) (*FileProvider, error) {
	p := &FileProvider{
		files:         make(map[string][]string),
		defaultLocale: defaultLocale,
		defaultWord:   defaultWord,
	}

	for locale, path := range files {
		list, err := loadWordFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading words for %q: %w", locale, err)
		}
		p.files[locale] = list
	}

	if _, ok := p.files[defaultLocale]; !ok {
		return nil, fmt.Errorf("no word file for default locale %q", defaultLocale)
	}

	return p, nil
}

func loadWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			list = append(list, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("word file %s is empty", path)
	}
	return list, nil
}

func (p *FileProvider) NextWord(locale string) (string, error) {
	list, ok := p.files[locale]
	if !ok {
		list = p.files[p.defaultLocale]
	}
	if len(list) == 0 {
		return p.defaultWord, nil
	}
	return list[rand.Intn(len(list))], nil
}
