package timeline

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

func newTestLoader(t *testing.T, dir string) *Loader {
	t.Helper()
	return NewLoader(dir, zerolog.New(io.Discard))
}

func TestLoader_LiteralMatchFromDirectory(t *testing.T) {
	dir := t.TempDir()
	doc := `{"matchId":"derby","teamA":"City","teamB":"United","duration":90,
		"events":[{"minute":20,"type":"goal","team":"teamB","description":"late"},
		          {"minute":5,"type":"kickoff","description":"go"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "derby.json"), []byte(doc), 0o644))

	tl, src := newTestLoader(t, dir).Load("derby", "A", "B")

	assert.Equal(t, SourceMatch, src)
	assert.Equal(t, "City", tl.TeamA)
	require.Len(t, tl.Events, 2)
	assert.Equal(t, 5, tl.Events[0].Minute)
	assert.Equal(t, model.EventGoal, tl.Events[1].Type)
}

func TestLoader_BundledDefaultByID(t *testing.T) {
	tl, src := newTestLoader(t, "").Load(DefaultMatchID, "x", "y")

	assert.Equal(t, SourceMatch, src)
	assert.Equal(t, "Manchester United", tl.TeamA)
	assert.Equal(t, "Liverpool", tl.TeamB)
	assert.Equal(t, 90, tl.Duration)
	assert.Len(t, tl.Events, 33)
}

func TestLoader_FallsBackToDefault(t *testing.T) {
	tl, src := newTestLoader(t, t.TempDir()).Load("unknown-match", "Team A", "Team B")

	assert.Equal(t, SourceDefault, src)
	assert.Equal(t, "unknown-match", tl.MatchID)
	assert.Equal(t, "Manchester United", tl.TeamA)
	assert.Equal(t, "Liverpool", tl.TeamB)

	for i := 1; i < len(tl.Events); i++ {
		assert.LessOrEqual(t, tl.Events[i-1].Minute, tl.Events[i].Minute)
	}
}

func TestLoader_RejectsPathTraversal(t *testing.T) {
	tl, src := newTestLoader(t, "").Load("../etc/passwd", "A", "B")

	assert.Equal(t, SourceDefault, src)
	assert.Equal(t, "../etc/passwd", tl.MatchID)
}

func TestLoader_EmptyFallback(t *testing.T) {
	l := &Loader{logger: zerolog.New(io.Discard)}

	tl, src := l.Load("m1", "Team A", "Team B")

	assert.Equal(t, SourceEmpty, src)
	assert.Equal(t, Empty("m1", "Team A", "Team B"), tl)
	assert.Equal(t, 90, tl.Duration)
	assert.Empty(t, tl.Events)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)

	tl, err := Parse([]byte(`{"matchId":"m"}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultDuration, tl.Duration)
	assert.NotNil(t, tl.Events)
}
