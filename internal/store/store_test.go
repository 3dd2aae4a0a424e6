package store

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushAssignsStableIndices(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		idx, err := s.Push([]string{"item"}, nil)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), idx)
	}
	assert.Equal(t, uint32(5), s.Count())
}

func TestConcurrentPushesProduceDistinctIndices(t *testing.T) {
	s := New()
	const n = 2000
	const writers = 8

	var wg sync.WaitGroup
	seen := make([]int32, n*writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				idx, err := s.Push([]string{"x"}, nil)
				require.NoError(t, err)
				seen[idx]++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint32(n*writers), s.Count())
	for i, c := range seen {
		require.Equalf(t, int32(1), c, "index %d pushed %d times, want exactly 1", i, c)
	}
}

func TestGetResolvesEveryIndexBelowCount(t *testing.T) {
	s := New()
	want := []string{"alpha", "beta", "gamma"}
	for _, w := range want {
		_, err := s.Push([]string{w}, nil)
		require.NoError(t, err)
	}
	for i, w := range want {
		got := s.Get(uint32(i))
		assert.Equal(t, w, got.Columns[0])
		assert.Equal(t, uint32(i), got.Index)
	}
}

func TestPushAfterCloseFails(t *testing.T) {
	s := New()
	s.Close()
	_, err := s.Push([]string{"x"}, nil)
	assert.ErrorIs(t, err, ErrClosed{})
}

func TestReset(t *testing.T) {
	s := New()
	_, _ = s.Push([]string{"x"}, nil)
	s.Reset()
	assert.Equal(t, uint32(0), s.Count())
	idx, err := s.Push([]string{"y"}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)
}

func TestIngestLineMode(t *testing.T) {
	s := New()
	inj := &SegmentedInjector{Inner: NewInjector(s), NumCols: 1}
	r := strings.NewReader("item1\nitem2\r\nitem3")

	err := Ingest(context.Background(), r, nil, FailFast, inj)
	require.NoError(t, err)

	require.Equal(t, uint32(3), s.Count())
	assert.Equal(t, "item1", s.Get(0).Columns[0])
	assert.Equal(t, "item2", s.Get(1).Columns[0])
	assert.Equal(t, "item3", s.Get(2).Columns[0])
}

func TestIngestNotifiesAfterEveryRecord(t *testing.T) {
	s := New()
	inj := &SegmentedInjector{Inner: NewInjector(s), NumCols: 1}
	r := strings.NewReader("a\nb\nc\n")

	var notifications int
	err := Ingest(context.Background(), r, nil, FailFast, inj, func() { notifications++ })
	require.NoError(t, err)
	assert.Equal(t, 3, notifications)
}

func TestIngestDelimiterMode(t *testing.T) {
	s := New()
	inj := &SegmentedInjector{Inner: NewInjector(s), NumCols: 1}
	r := strings.NewReader("a\x00b\x00c")
	sep := byte(0)

	err := Ingest(context.Background(), r, &sep, FailFast, inj)
	require.NoError(t, err)
	require.Equal(t, uint32(3), s.Count())
}

func TestSegmentedInjectorPadsShortSplits(t *testing.T) {
	s := New()
	inj := &SegmentedInjector{
		Inner:   NewInjector(s),
		Split:   FixedDelimiterSplitter('\t'),
		NumCols: 3,
	}
	_, err := inj.PushLine("only-one-column")
	require.NoError(t, err)
	item := s.Get(0)
	require.Len(t, item.Columns, 3)
	assert.Equal(t, "only-one-column", item.Columns[0])
	assert.Equal(t, "", item.Columns[1])
	assert.Equal(t, "", item.Columns[2])
}

func TestSegmentedInjectorTruncatesExtraSplits(t *testing.T) {
	s := New()
	inj := &SegmentedInjector{
		Inner:   NewInjector(s),
		Split:   FixedDelimiterSplitter('\t'),
		NumCols: 2,
	}
	_, err := inj.PushLine("a\tb\tc\td")
	require.NoError(t, err)
	item := s.Get(0)
	require.Len(t, item.Columns, 2)
	assert.Equal(t, []string{"a", "b"}, item.Columns)
}
