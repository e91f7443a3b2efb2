package codec

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps format names to codecs.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register adds a codec. Panics on a duplicate format to surface misconfiguration early.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codecs[c.Format()]; exists {
		panic(fmt.Sprintf("codec registry: duplicate format %q", c.Format()))
	}
	r.codecs[c.Format()] = c
}

// Get returns the codec for format.
func (r *Registry) Get(format string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("no codec registered for format %q", format)
	}
	return c, nil
}

// ForPath picks the codec whose extension is the longest suffix of path.
func (r *Registry) ForPath(path string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lower := strings.ToLower(path)
	var best Codec
	bestLen := 0
	for _, c := range r.codecs {
		for _, ext := range c.Extensions() {
			if strings.HasSuffix(lower, ext) && len(ext) > bestLen {
				best, bestLen = c, len(ext)
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no codec matches file %q", path)
	}
	return best, nil
}

// Formats returns all registered format names, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
