package main

import (
	"context"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hexedgo/server/internal/core/event"
	"github.com/hexedgo/server/internal/hud"
	"github.com/hexedgo/server/internal/match"
	"github.com/hexedgo/server/internal/persist"
)

// recorder turns match events into announcements and, with a database,
// into match records and capture log rows. Handlers run on the game loop.
type recorder struct {
	hud      *hud.Printer
	matches  *persist.MatchRepo  // nil without a database
	captures *persist.CaptureLog // nil without a database
	log      *zap.Logger
	timeout  time.Duration

	matchID int64 // 0 when the current match has no record
}

func (r *recorder) subscribe(bus *event.Bus) {
	event.Subscribe(bus, r.onStarted)
	event.Subscribe(bus, r.onCaptured)
	event.Subscribe(bus, r.onLost)
	event.Subscribe(bus, r.onEliminated)
	event.Subscribe(bus, r.onBoard)
	event.Subscribe(bus, r.onOver)
	event.Subscribe(bus, func(e match.SpectatorAssigned) {
		r.log.Info("player spectating", zap.String("player", e.Player), zap.Error(e.Cause))
	})
	event.Subscribe(bus, func(e match.PlayerAssigned) {
		r.log.Info("player assigned",
			zap.String("player", e.Player),
			zap.Stringer("team", e.Team),
			zap.Int("zone", e.Zone.ID()),
		)
	})
}

func (r *recorder) onStarted(e match.MatchStarted) {
	r.log.Info(r.hud.Remaining(e.Duration), zap.String("match", e.Name), zap.Int("zones", e.Zones))
	r.matchID = 0
	if r.matches == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	id, err := r.matches.Begin(ctx, e.Name, e.Zones)
	if err != nil {
		r.log.Error("record match start", zap.String("match", e.Name), zap.Error(err))
		return
	}
	r.matchID = id
}

func (r *recorder) onCaptured(e match.HexCaptured) {
	r.log.Info(r.hud.Captured(e))
	r.append("captured", e.Zone.ID(), e.Zone.Center().X, e.Zone.Center().Y, int(e.Team), e.Player, e.At)
}

func (r *recorder) onLost(e match.HexLost) {
	r.log.Info(r.hud.Lost(e))
	r.append("lost", e.Zone.ID(), e.Zone.Center().X, e.Zone.Center().Y, int(e.Team), "", e.At)
}

func (r *recorder) append(kind string, zoneID int, x, y int32, team int, player string, at time.Duration) {
	if r.captures == nil || r.matchID == 0 {
		return
	}
	r.captures.Append(persist.CaptureEntry{
		MatchID: r.matchID,
		Kind:    kind,
		ZoneID:  zoneID,
		X:       x,
		Y:       y,
		Team:    team,
		Player:  player,
		At:      at,
	})
}

func (r *recorder) onEliminated(e match.PlayerEliminated) {
	r.log.Info(r.hud.Eliminated(e), zap.String("player", e.Player))
}

func (r *recorder) onBoard(e match.LeaderboardPosted) {
	r.log.Info(r.hud.Leaderboard(e.Standings, e.Remaining))
}

func (r *recorder) onOver(e match.MatchOver) {
	r.log.Info(r.hud.Outcome(e.Outcome),
		zap.Stringer("reason", e.Reason),
		zap.Duration("elapsed", e.Elapsed),
	)
	if r.matches == nil || r.matchID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.matches.SaveResult(ctx, r.matchID, e.Reason.String(), e.Elapsed, standings(e.Outcome)); err != nil {
		r.log.Error("record match result", zap.Int64("match_id", r.matchID), zap.Error(err))
	}
}

// standings flattens an outcome into rows ordered by zones, then team.
func standings(o match.Outcome) []persist.Standing {
	out := make([]persist.Standing, 0, len(o.Counts))
	for team, n := range o.Counts {
		out = append(out, persist.Standing{
			Team:   int(team),
			Zones:  n,
			Winner: slices.Contains(o.Winners, team),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Zones != out[j].Zones {
			return out[i].Zones > out[j].Zones
		}
		return out[i].Team < out[j].Team
	})
	return out
}
