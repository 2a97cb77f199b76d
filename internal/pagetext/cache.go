// Package pagetext accumulates the extracted text of each page read during a
// session, keyed by page number.
package pagetext

import (
	"sort"
	"strings"
	"sync"
)

// Cache stores one text entry per page. Blank text never replaces a page that
// already has content, so a render torn down mid-extraction cannot erase it.
type Cache struct {
	mu    sync.RWMutex
	pages map[int]string
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{pages: map[int]string{}}
}

// Put records text for page and reports whether the stored value changed.
func (c *Cache) Put(page int, text string) bool {
	text = strings.TrimSpace(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.pages[page]
	if text == "" {
		if ok {
			return false
		}
		c.pages[page] = ""
		return true
	}
	if ok && existing == text {
		return false
	}
	c.pages[page] = text
	return true
}

// Get returns the cached text for page.
func (c *Cache) Get(page int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.pages[page]
	return text, ok
}

// Has reports whether page was extracted at least once.
func (c *Cache) Has(page int) bool {
	_, ok := c.Get(page)
	return ok
}

// Len returns the number of pages seen.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// GetRange concatenates the non-empty text of pages start..end in ascending
// page order, whatever order the pages were stored in.
func (c *Cache) GetRange(start, end int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	numbers := make([]int, 0, len(c.pages))
	for page := range c.pages {
		if page >= start && page <= end {
			numbers = append(numbers, page)
		}
	}
	sort.Ints(numbers)
	parts := make([]string, 0, len(numbers))
	for _, page := range numbers {
		if text := c.pages[page]; text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Missing lists the pages in start..end that were never extracted.
func (c *Cache) Missing(start, end int) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var missing []int
	for page := start; page <= end; page++ {
		if _, ok := c.pages[page]; !ok {
			missing = append(missing, page)
		}
	}
	return missing
}

// Reset drops every entry. Called when the day or the document changes.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = map[int]string{}
}
