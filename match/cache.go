// match/cache.go
package match

import (
	"regexp"
	"sync"
)

// Cache holds one compiled guess pattern per active game so the hot
// chat path does not recompile on every message. Entries only leave on
// Invalidate; a miss (fresh process, evicted entry) recompiles from the
// durable word transparently.
type Cache struct {
	patterns map[string]*regexp.Regexp
	mutex    sync.Mutex
}

func NewCache() *Cache {
	return &Cache{
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Compile builds the guess pattern for a word: case-insensitive,
// anchored at the start of the message. Trailing text is ignored so a
// guess phrased as a sentence still counts.
func Compile(word string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)^` + regexp.QuoteMeta(word))
}

// GetOrCompile returns the cached pattern for a game, compiling and
// caching it on a miss.
func (c *Cache) GetOrCompile(gameID, word string) (*regexp.Regexp, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if pattern, exists := c.patterns[gameID]; exists {
		return pattern, nil
	}

	pattern, err := Compile(word)
	if err != nil {
		return nil, err
	}
	c.patterns[gameID] = pattern
	return pattern, nil
}

// Invalidate drops the pattern of a terminated game.
func (c *Cache) Invalidate(gameID string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.patterns, gameID)
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.patterns)
}
