package facade

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"matchmaker/internal/config"
	"matchmaker/internal/interrupt"
	"matchmaker/internal/match"
	"matchmaker/internal/store"
)

func TestNonInteractiveGetMatchesFiltersAndSorts(t *testing.T) {
	defer goleak.VerifyNone(t)

	items := []string{"foo.go", "bar.go", "foobar.go", "baz.go"}
	matches, err := NonInteractiveGetMatches(context.Background(), items, "foo", time.Second, nil)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, m := range matches {
		assert.Contains(t, []string{"foo.go", "foobar.go"}, items[m.ItemIndex])
	}
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		assert.True(t, prev.Score > cur.Score || (prev.Score == cur.Score && prev.ItemIndex < cur.ItemIndex),
			"matches %d and %d out of (-score, index) order", i-1, i)
	}
}

func TestNonInteractiveGetMatchesEmptyQueryIncludesEverything(t *testing.T) {
	defer goleak.VerifyNone(t)

	items := []string{"one", "two", "three"}
	matches, err := NonInteractiveGetMatches(context.Background(), items, "", time.Second, nil)
	require.NoError(t, err)
	assert.Len(t, matches, len(items))
}

// TestNonInteractiveGetMatchesSinkStopsOnTrue mirrors the original's
// mm_get_match helper: a sink that unconditionally returns true
// captures exactly one match and stops iteration immediately, it does
// not mean "keep going".
func TestNonInteractiveGetMatchesSinkStopsOnTrue(t *testing.T) {
	defer goleak.VerifyNone(t)

	items := []string{"alpha", "album", "almond", "alpaca"}
	var seen int
	matches, err := NonInteractiveGetMatches(context.Background(), items, "al", time.Second, func(m match.Match) bool {
		seen++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
	require.Len(t, matches, 1)
}

// TestNonInteractiveGetMatchesSinkFalseCollectsEverything checks the
// complementary case: a sink that always returns false never stops
// iteration, so every match is still collected in out.
func TestNonInteractiveGetMatchesSinkFalseCollectsEverything(t *testing.T) {
	defer goleak.VerifyNone(t)

	items := []string{"alpha", "album", "almond", "alpaca"}
	matches, err := NonInteractiveGetMatches(context.Background(), items, "al", time.Second, func(m match.Match) bool {
		return false
	})
	require.NoError(t, err)
	assert.Len(t, matches, 4)
}

func TestEventLoopClosedErrorMessage(t *testing.T) {
	var err error = EventLoopClosedError{}
	assert.Contains(t, err.Error(), "event loop closed")
}

func TestChildErrorUnwraps(t *testing.T) {
	inner := assert.AnError
	err := &ChildError{Cmd: "less {}", Err: inner}
	assert.ErrorIs(t, err, inner)
}

func TestIOErrorUnwraps(t *testing.T) {
	inner := assert.AnError
	err := &IOError{Err: inner}
	assert.ErrorIs(t, err, inner)
}

func TestRunReloadIngestsCommandOutputIntoStore(t *testing.T) {
	if _, err := exec.LookPath("/bin/sh"); err != nil {
		t.Skip("no /bin/sh available")
	}
	defer goleak.VerifyNone(t)

	s := store.New()
	inj := store.NewInjector(s)
	mw := match.NewWorker(s, 0)
	cfg := config.DefaultConfig()
	w := NewWorker(1)
	sh := interrupt.Shell{Path: "/bin/sh", Arg: "-c"}

	runReload(context.Background(), sh, "printf 'one\\ntwo\\nthree\\n'", s, inj, cfg, w, mw)

	require.Equal(t, uint32(3), s.Count())
	assert.Equal(t, "one", s.Get(0).Columns[0])
	assert.Equal(t, "three", s.Get(2).Columns[0])
}
