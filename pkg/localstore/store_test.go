package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type entry struct {
	ID       string  `json:"id"`
	Calories float64 `json:"calories"`
}

func drivers(t *testing.T) map[string]Store {
	f, err := NewFile(t.TempDir(), "test")
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemory(),
		"file":   f,
	}
}

func TestGet_MissingReturnsDefault(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			got := Get(s, "calorie_entries", []entry{})
			require.NotNil(t, got)
			require.Empty(t, got)
		})
	}
}

func TestSetThenGet(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			want := []entry{{ID: "1", Calories: 500}, {ID: "2", Calories: 300}}
			require.NoError(t, Set(s, "calorie_entries", want))
			require.Equal(t, want, Get(s, "calorie_entries", []entry(nil)))
			require.Equal(t, []string{"calorie_entries"}, s.Keys())
		})
	}
}

func TestGet_CorruptReturnsDefault(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.SetRaw("meals", []byte(`{"not":"a list"`)))
	got := Get(s, "meals", []entry{{ID: "default"}})
	require.Equal(t, []entry{{ID: "default"}}, got)

	require.NoError(t, s.SetRaw("meals", []byte(`{"id":"x"}`)))
	require.Equal(t, []entry{}, Get(s, "meals", []entry{}))
}

func TestSet_SerializeError(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			err := Set(s, "bad", map[string]any{"ch": make(chan int)})
			require.ErrorIs(t, err, ErrSerialize)
			_, ok := s.GetRaw("bad")
			require.False(t, ok)
		})
	}
}

func TestQuota(t *testing.T) {
	s := WithQuota(NewMemory(), 32)
	require.NoError(t, Set(s, "a", "0123456789"))
	err := Set(s, "b", "01234567890123456789")
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// 覆盖已有键只计算新值
	require.NoError(t, Set(s, "a", "012345678901234"))
	require.Equal(t, "012345678901234", Get(s, "a", ""))
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir, "calofeed")
	require.NoError(t, err)
	require.NoError(t, Set(f, "meals", []entry{{ID: "m1"}}))
	require.NoError(t, Set(f, "weight_entries", []entry{{ID: "w1"}}))
	require.NoError(t, f.Remove("weight_entries"))

	reopened, err := NewFile(dir, "calofeed")
	require.NoError(t, err)
	require.Equal(t, []entry{{ID: "m1"}}, Get(reopened, "meals", []entry(nil)))
	require.Equal(t, []string{"meals"}, reopened.Keys())

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestFile_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ns.json"), []byte("{oops"), 0o644))
	f, err := NewFile(dir, "ns")
	require.NoError(t, err)
	require.Empty(t, f.Keys())
	require.Equal(t, 7, Get(f, "anything", 7))
}

func TestNamespacesAreIsolated(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFile(dir, "origin-a")
	require.NoError(t, err)
	b, err := NewFile(dir, "origin-b")
	require.NoError(t, err)
	require.NoError(t, Set(a, "k", 1))
	require.Equal(t, 0, Get(b, "k", 0))
}
