// Package hud renders operator and player facing text for a running match:
// leaderboards, zone status, capture announcements and results. Numbers are
// formatted for the configured locale.
package hud

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hexedgo/server/internal/match"
	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

// Printer formats match state for one locale.
type Printer struct {
	p *message.Printer
}

// New returns a printer for a BCP 47 locale tag. An empty tag means English.
func New(locale string) (*Printer, error) {
	tag := language.English
	if locale != "" {
		t, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", locale, err)
		}
		tag = t
	}
	return &Printer{p: message.NewPrinter(tag)}, nil
}

// Clock formats a duration as h:mm:ss, or m:ss under an hour. Negative
// durations print as zero.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	h, m, sec := s/3600, s/60%60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// Remaining is the time-left line.
func (h *Printer) Remaining(d time.Duration) string {
	return h.p.Sprintf("Time remaining: %s", Clock(d))
}

// Leaderboard renders the standings, one team per line, under a header with
// the time left. Zones are pluralized.
func (h *Printer) Leaderboard(standings []territory.Standing, remaining time.Duration) string {
	var b strings.Builder
	b.WriteString(h.p.Sprintf("Leaderboard (%s left)", Clock(remaining)))
	if len(standings) == 0 {
		b.WriteString("\n")
		b.WriteString(h.p.Sprintf("No team holds a hex."))
		return b.String()
	}
	for i, s := range standings {
		b.WriteString("\n")
		b.WriteString(h.p.Sprintf("%d. %s: %d %s", i+1, s.Team, s.Zones, hexes(s.Zones)))
	}
	return b.String()
}

func hexes(n int) string {
	if n == 1 {
		return "hex"
	}
	return "hexes"
}

func zoneName(z zone.Zone) string {
	c := z.Center()
	return fmt.Sprintf("hex #%d (%d, %d)", z.ID(), c.X, c.Y)
}

// Status renders a player's view of the zone they stand in.
func (h *Printer) Status(st match.Status) string {
	if st.Player == nil || st.Player.State != match.Assigned {
		return h.p.Sprintf("You are spectating.")
	}
	if st.Zone == nil {
		return h.p.Sprintf("You are not inside a hex.")
	}
	name := zoneName(st.Zone)
	switch c := st.Controller; {
	case !c.Playable():
		return h.p.Sprintf("%s is unclaimed. Your progress: %.1f%%", name, st.Progress)
	case c == st.Player.Team:
		return h.p.Sprintf("%s is held by your team (%.1f%%).", name, st.Progress)
	default:
		return h.p.Sprintf("%s is held by %s. Your progress: %.1f%% of theirs", name, c, st.Progress)
	}
}

func (h *Printer) Captured(ev match.HexCaptured) string {
	if ev.Player != "" {
		return h.p.Sprintf("%s (%s) captured %s.", ev.Team, ev.Player, zoneName(ev.Zone))
	}
	return h.p.Sprintf("%s captured %s.", ev.Team, zoneName(ev.Zone))
}

func (h *Printer) Lost(ev match.HexLost) string {
	return h.p.Sprintf("%s lost %s.", ev.Team, zoneName(ev.Zone))
}

func (h *Printer) Eliminated(ev match.PlayerEliminated) string {
	if ev.Reason == match.LeaveEliminated {
		return h.p.Sprintf("%s has been eliminated.", ev.Team)
	}
	return h.p.Sprintf("%s left the match (%s).", ev.Team, ev.Reason)
}

// Outcome announces the result of a concluded match.
func (h *Printer) Outcome(o match.Outcome) string {
	took := Clock(o.Elapsed)
	if team, ok := o.Winner(); ok {
		if o.Reason == match.ReasonDomination {
			return h.p.Sprintf("%s conquered the map in %s!", team, took)
		}
		return h.p.Sprintf("Time is up. %s wins with %d %s.", team, o.Counts[team], hexes(o.Counts[team]))
	}
	if o.NoWinner() {
		return h.p.Sprintf("Time is up. Nobody holds a hex, no winner.")
	}
	names := make([]string, len(o.Winners))
	for i, t := range o.Winners {
		names[i] = t.String()
	}
	n := o.Counts[o.Winners[0]]
	return h.p.Sprintf("Time is up. Draw between %s with %d %s each.", strings.Join(names, ", "), n, hexes(n))
}

// Controlled lists the zones a team holds.
func (h *Printer) Controlled(team territory.TeamID, zones []zone.Zone) string {
	if len(zones) == 0 {
		return h.p.Sprintf("%s holds no hexes.", team)
	}
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = zoneName(z)
	}
	return h.p.Sprintf("%s holds %d %s: %s", team, len(zones), hexes(len(zones)), strings.Join(names, ", "))
}
