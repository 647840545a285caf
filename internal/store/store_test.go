package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/baseline/internal/testutil"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	s.SetIDGenerator(testutil.NewFixedIDGenerator())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("user_version", "2"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "ledger.db"))
	assert.Error(t, err)
}

func TestRecord_AssignsIDAndSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Record(ctx, Run{Script: "a.yaml", Fingerprint: "fp-a", Status: "PASSED", Outcome: "Success"})
	require.NoError(t, err)
	second, err := s.Record(ctx, Run{Script: "b.yaml", Fingerprint: "fp-b", Status: "FAILED", Outcome: "ScriptError"})
	require.NoError(t, err)

	assert.Equal(t, "run-00000000-0000-0000-0000-000000000001", first.ID)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, []string{}, first.Artifacts)
}

func TestRecord_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	imageErr := 12.5

	want, err := s.Record(ctx, Run{
		Script:      "cone.yaml",
		Fingerprint: "abc",
		Status:      "FAILED",
		Outcome:     "ImageMismatch",
		Target:      "RenderWindow",
		Threshold:   10,
		ImageError:  &imageErr,
		Artifacts:   []string{"/tmp/cone.png", "/tmp/cone.diff.png"},
		Message:     "image mismatch",
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, want.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	var raw string
	require.NoError(t, s.db.QueryRow("SELECT artifacts FROM runs WHERE id = ?", want.ID).Scan(&raw))
	assert.Equal(t, `["/tmp/cone.png","/tmp/cone.diff.png"]`, raw)
}

func TestRecord_RejectsBadStatus(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Record(context.Background(), Run{Script: "a", Fingerprint: "f", Status: "MAYBE", Outcome: "x"})
	assert.Error(t, err)
}

func TestGet_Missing(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestList_FilterAndLimit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	for _, script := range []string{"a", "b", "a", "a", "b"} {
		_, err := s.Record(ctx, Run{Script: script, Fingerprint: "fp-" + script, Status: "PASSED", Outcome: "Success"})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, seqs(all))

	onlyA, err := s.List(ctx, Filter{Script: "a"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4}, seqs(onlyA))

	recentA, err := s.List(ctx, Filter{Script: "a", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, seqs(recentA))

	byFP, err := s.List(ctx, Filter{Fingerprint: "fp-b"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, seqs(byFP))

	none, err := s.List(ctx, Filter{Script: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRecord_ConcurrentWritersGetDistinctSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Record(ctx, Run{Script: "c", Fingerprint: "f", Status: "PASSED", Outcome: "Success"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	runs, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 20)
	for i, r := range runs {
		assert.Equal(t, int64(i+1), r.Seq)
	}
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, UUIDv7Generator{}.Generate())
}

func seqs(runs []Run) []int64 {
	out := make([]int64, len(runs))
	for i, r := range runs {
		out[i] = r.Seq
	}
	return out
}
