package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/types"
)

func TestSetReplacesWholesale(t *testing.T) {
	fi := NewFileIndex()

	first := types.EmptyFileRecord("/ws/a.m")
	first.PackageName = "old"
	fi.Set(first)

	second := types.EmptyFileRecord("/ws/a.m")
	second.PackageName = "new"
	fi.Set(second)

	got := fi.Get("/ws/a.m")
	assert.Same(t, second, got)
	assert.Equal(t, "new", got.PackageName)
	assert.Equal(t, 1, fi.Len())
}

func TestSetIgnoresInvalidRecords(t *testing.T) {
	fi := NewFileIndex()
	fi.Set(nil)
	fi.Set(&types.FileRecord{})
	assert.Equal(t, 0, fi.Len())
}

func TestGetMissingReturnsNil(t *testing.T) {
	fi := NewFileIndex()
	assert.Nil(t, fi.Get("/ws/never-indexed.m"))
	assert.False(t, fi.Has("/ws/never-indexed.m"))
}

func TestDelete(t *testing.T) {
	fi := NewFileIndex()
	fi.Set(types.EmptyFileRecord("/ws/a.m"))
	fi.Delete("/ws/a.m")
	assert.False(t, fi.Has("/ws/a.m"))

	// Deleting an absent path is fine.
	fi.Delete("/ws/missing.m")
}

func TestAllSnapshot(t *testing.T) {
	fi := NewFileIndex()
	fi.Set(types.EmptyFileRecord("/ws/a.m"))
	fi.Set(types.EmptyFileRecord("/ws/b.m"))

	all := fi.All()
	assert.Len(t, all, 2)

	// Mutating the index afterwards must not shrink the snapshot.
	fi.Delete("/ws/a.m")
	assert.Len(t, all, 2)
}

func TestMarkStale(t *testing.T) {
	fi := NewFileIndex()
	fi.Set(types.EmptyFileRecord("/ws/a.m"))
	fi.Set(types.EmptyFileRecord("/ws/b.m"))

	fi.MarkStale([]string{"/ws/a.m", "/ws/unknown.m"})

	assert.True(t, fi.Stale("/ws/a.m"))
	assert.False(t, fi.Stale("/ws/b.m"))
	assert.False(t, fi.Stale("/ws/unknown.m"))
}

func TestUpToDate(t *testing.T) {
	fi := NewFileIndex()
	hash := HashContent("x = 1;")

	assert.False(t, fi.UpToDate("/ws/a.m", hash))

	rec := types.EmptyFileRecord("/ws/a.m")
	rec.ContentHash = hash
	fi.Set(rec)
	assert.True(t, fi.UpToDate("/ws/a.m", hash))
	assert.False(t, fi.UpToDate("/ws/a.m", HashContent("x = 2;")))

	fi.MarkStale([]string{"/ws/a.m"})
	assert.False(t, fi.UpToDate("/ws/a.m", hash))

	// A fresh write clears the stale mark.
	fi.Set(rec)
	assert.True(t, fi.UpToDate("/ws/a.m", hash))

	fi.Delete("/ws/a.m")
	assert.False(t, fi.UpToDate("/ws/a.m", hash))
}

func TestMarkStaleConcurrentWithReaders(t *testing.T) {
	fi := NewFileIndex()
	hash := HashContent("x = 1;")
	rec := types.EmptyFileRecord("/ws/a.m")
	rec.ContentHash = hash
	fi.Set(rec)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				fi.MarkStale([]string{"/ws/a.m"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				_ = fi.UpToDate("/ws/a.m", hash)
				r := types.EmptyFileRecord("/ws/a.m")
				r.ContentHash = hash
				fi.Set(r)
			}
		}()
	}
	wg.Wait()

	assert.True(t, fi.Has("/ws/a.m"))
}

func TestHashContent(t *testing.T) {
	assert.Equal(t, HashContent("x = 1;"), HashContent("x = 1;"))
	assert.NotEqual(t, HashContent("x = 1;"), HashContent("x = 2;"))
}
