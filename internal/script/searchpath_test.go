package script

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPath_PrependRelease(t *testing.T) {
	sp := NewSearchPath("a", "b")

	release := sp.Prepend("script-dir")
	assert.Equal(t, []string{"script-dir", "a", "b"}, sp.Dirs())

	// Entries added while the scope is open survive its release.
	sp.Append("extra")
	release()
	assert.Equal(t, []string{"a", "b", "extra"}, sp.Dirs())

	release()
	assert.Equal(t, []string{"a", "b", "extra"}, sp.Dirs())
}

func TestSearchPath_ReleaseRemovesOwnEntryOnly(t *testing.T) {
	sp := NewSearchPath()
	outer := sp.Prepend("same")
	inner := sp.Prepend("same")

	outer()
	assert.Equal(t, []string{"same"}, sp.Dirs())
	inner()
	assert.Empty(t, sp.Dirs())
}

func TestSearchPath_ConcurrentScopes(t *testing.T) {
	sp := NewSearchPath("base")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := sp.Prepend("tmp")
			defer release()
			_ = sp.Dirs()
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"base"}, sp.Dirs())
}

func TestSearchPath_Resolve(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "helper.yaml"), []byte("steps: []\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(first, "helper.yaml"), 0o755))

	sp := NewSearchPath(first, second)
	got, err := sp.Resolve("helper.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "helper.yaml"), got)

	abs, err := sp.Resolve(got)
	require.NoError(t, err)
	assert.Equal(t, got, abs)

	_, err = sp.Resolve("nothing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing.yaml")
}
