// Package timeline resolves the scripted event sequence a match simulation plays.
package timeline

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/model"
)

// DefaultMatchID names the bundled script used when no match-specific one exists.
const DefaultMatchID = "manchester-united-vs-liverpool"

// DefaultDuration is used for the empty fallback timeline.
const DefaultDuration = 90

//go:embed timelines/*.json
var bundled embed.FS

// Source reports which step of the resolution chain produced a timeline.
type Source int

const (
	// SourceMatch is a script keyed by the literal match identifier.
	SourceMatch Source = iota
	// SourceDefault is the bundled default script; its team names win.
	SourceDefault
	// SourceEmpty is the event-less fallback.
	SourceEmpty
)

func (s Source) String() string {
	switch s {
	case SourceMatch:
		return "match"
	case SourceDefault:
		return "default"
	default:
		return "empty"
	}
}

// Loader reads timelines from static, read-only sources.
type Loader struct {
	sources []fs.FS
	logger  zerolog.Logger
}

// NewLoader builds a loader over the bundled scripts. When dir is non-empty,
// its <matchId>.json files take precedence over the bundled ones.
func NewLoader(dir string, logger zerolog.Logger) *Loader {
	var sources []fs.FS
	if dir != "" {
		sources = append(sources, os.DirFS(dir))
	}
	sub, err := fs.Sub(bundled, "timelines")
	if err == nil {
		sources = append(sources, sub)
	}
	return &Loader{
		sources: sources,
		logger:  logger.With().Str("component", "timeline_loader").Logger(),
	}
}

// Load never fails: it falls back to the default script and then to an
// empty 90 minute timeline carrying the caller's team names.
func (l *Loader) Load(matchID, teamA, teamB string) (model.MatchTimeline, Source) {
	tl, err := l.find(matchID)
	if err == nil {
		return tl, SourceMatch
	}
	l.logger.Debug().Err(err).Str("match_id", matchID).Msg("no match specific timeline, trying default")

	tl, err = l.find(DefaultMatchID)
	if err == nil {
		l.logger.Info().
			Str("match_id", matchID).
			Str("team_a", tl.TeamA).
			Str("team_b", tl.TeamB).
			Msg("loaded default timeline")
		tl.MatchID = matchID
		return tl, SourceDefault
	}
	l.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to load default timeline")

	return Empty(matchID, teamA, teamB), SourceEmpty
}

// Empty returns a timeline with no events.
func Empty(matchID, teamA, teamB string) model.MatchTimeline {
	return model.MatchTimeline{
		MatchID:  matchID,
		TeamA:    teamA,
		TeamB:    teamB,
		Events:   []model.MatchEvent{},
		Duration: DefaultDuration,
	}
}

func (l *Loader) find(id string) (model.MatchTimeline, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || !fs.ValidPath(id+".json") {
		return model.MatchTimeline{}, fmt.Errorf("invalid timeline id %q", id)
	}
	var lastErr error = fs.ErrNotExist
	for _, src := range l.sources {
		data, err := fs.ReadFile(src, id+".json")
		if err != nil {
			lastErr = err
			continue
		}
		return Parse(data)
	}
	return model.MatchTimeline{}, fmt.Errorf("timeline %s: %w", id, lastErr)
}

// Parse decodes a timeline document and orders its events by minute.
func Parse(data []byte) (model.MatchTimeline, error) {
	var tl model.MatchTimeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return model.MatchTimeline{}, fmt.Errorf("decode timeline: %w", err)
	}
	if tl.Duration <= 0 {
		tl.Duration = DefaultDuration
	}
	if tl.Events == nil {
		tl.Events = []model.MatchEvent{}
	}
	sort.SliceStable(tl.Events, func(i, j int) bool {
		return tl.Events[i].Minute < tl.Events[j].Minute
	})
	return tl, nil
}
