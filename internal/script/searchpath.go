package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SearchPath is the ordered list of directories used to resolve imports.
//
// Thread-safety: all methods are safe for concurrent use.
type SearchPath struct {
	mu      sync.Mutex
	entries []pathEntry
	nextID  int
}

type pathEntry struct {
	dir string
	id  int
}

// NewSearchPath creates a search path holding dirs in order.
func NewSearchPath(dirs ...string) *SearchPath {
	p := &SearchPath{}
	for _, d := range dirs {
		p.Append(d)
	}
	return p
}

// Append adds dir at the end of the list.
func (p *SearchPath) Append(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	p.entries = append(p.entries, pathEntry{dir: dir, id: p.nextID})
}

// Prepend adds dir at the front of the list and returns a release func that
// removes exactly that entry. Entries added by anyone else in the meantime
// are kept. Release is idempotent.
func (p *SearchPath) Prepend(dir string) (release func()) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.entries = append([]pathEntry{{dir: dir, id: id}}, p.entries...)
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { p.remove(id) })
	}
}

func (p *SearchPath) remove(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.entries {
		if e.id == id {
			p.entries = append(p.entries[:i:i], p.entries[i+1:]...)
			return
		}
	}
}

// Dirs returns a snapshot of the directories in order.
func (p *SearchPath) Dirs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	dirs := make([]string, len(p.entries))
	for i, e := range p.entries {
		dirs[i] = e.dir
	}
	return dirs
}

// Resolve returns the first existing file named name under the listed
// directories. Absolute names are returned as is when they exist.
func (p *SearchPath) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("no helper named %q: %w", name, err)
		}
		return name, nil
	}

	for _, dir := range p.Dirs() {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no helper named %q on search path %v", name, p.Dirs())
}
