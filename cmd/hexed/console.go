package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hexedgo/server/internal/hud"
	"github.com/hexedgo/server/internal/match"
	"github.com/hexedgo/server/internal/system"
	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

var errUsage = errors.New("usage")

const consoleHelp = `commands:
  start [generator]        start a match (default generator from config)
  join <player> [name]     assign a player to a team
  rejoin <player>          re-assign a spectating player
  leave <player>           player disconnects
  spectate <player>        force a player to spectate
  status <player> <x> <y>  zone status at a position
  controlled <team>        zones a team holds
  leaderboard              current standings
  time                     time remaining
  settime <duration>       set the elapsed match time, e.g. 85m`

// console reads operator commands line by line and queues them on the
// inbox. Output from queries is written by the game loop.
type console struct {
	inbox     *system.Inbox
	hud       *hud.Printer
	out       io.Writer
	generator string
	timeout   time.Duration
}

func (c *console) run(ctx context.Context, in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "help" {
			fmt.Fprintln(c.out, consoleHelp)
			continue
		}
		reply := make(chan error, 1)
		cmd, err := c.parse(line, reply)
		if err != nil {
			fmt.Fprintln(c.out, err)
			continue
		}
		if !c.inbox.Send(cmd) {
			fmt.Fprintln(c.out, "server busy, try again")
			continue
		}
		select {
		case err := <-reply:
			if err != nil {
				fmt.Fprintln(c.out, "error:", err)
			}
		case <-time.After(c.timeout):
			fmt.Fprintln(c.out, "no reply from the game loop")
		case <-ctx.Done():
			return
		}
	}
}

// parse turns one console line into a command answering on reply.
func (c *console) parse(line string, reply chan<- error) (system.Command, error) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	usage := func(form string) error {
		return fmt.Errorf("%w: %s", errUsage, form)
	}

	switch name {
	case "start":
		gen := c.generator
		if len(args) > 0 {
			gen = args[0]
		}
		return system.Start{Generator: gen, Reply: reply}, nil
	case "join":
		if len(args) < 1 {
			return nil, usage("join <player> [name]")
		}
		display := args[0]
		if len(args) > 1 {
			display = strings.Join(args[1:], " ")
		}
		return system.Join{Player: args[0], Name: display, Real: true, Reply: reply}, nil
	case "rejoin":
		if len(args) != 1 {
			return nil, usage("rejoin <player>")
		}
		return system.Join{Player: args[0], Reply: reply}, nil
	case "leave", "spectate":
		if len(args) != 1 {
			return nil, usage(name + " <player>")
		}
		reason := match.LeaveDisconnect
		if name == "spectate" {
			reason = match.LeaveSpectate
		}
		return system.Leave{Player: args[0], Reason: reason, Reply: reply}, nil
	case "settime":
		if len(args) != 1 {
			return nil, usage("settime <duration>")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil || d < 0 {
			return nil, usage("settime <duration>")
		}
		return system.SetTime{Elapsed: d, Reply: reply}, nil
	case "leaderboard", "lb":
		return c.query(reply, func(m *match.Match) string {
			return c.hud.Leaderboard(m.Leaderboard(), m.Remaining())
		}), nil
	case "time":
		return c.query(reply, func(m *match.Match) string {
			return c.hud.Remaining(m.Remaining())
		}), nil
	case "controlled":
		if len(args) != 1 {
			return nil, usage("controlled <team>")
		}
		n, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return nil, usage("controlled <team>")
		}
		team := territory.TeamID(n)
		return c.query(reply, func(m *match.Match) string {
			return c.hud.Controlled(team, m.Controlled(team))
		}), nil
	case "status":
		if len(args) != 3 {
			return nil, usage("status <player> <x> <y>")
		}
		x, errX := strconv.ParseInt(args[1], 10, 32)
		y, errY := strconv.ParseInt(args[2], 10, 32)
		if errX != nil || errY != nil {
			return nil, usage("status <player> <x> <y>")
		}
		player, at := args[0], zone.Point{X: int32(x), Y: int32(y)}
		return system.Query{Fn: func(m *match.Match) error {
			st, err := m.Status(player, at)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, c.hud.Status(st))
			return nil
		}, Reply: reply}, nil
	}
	return nil, fmt.Errorf("unknown command %q (try help)", name)
}

func (c *console) query(reply chan<- error, render func(m *match.Match) string) system.Command {
	return system.Query{Fn: func(m *match.Match) error {
		fmt.Fprintln(c.out, render(m))
		return nil
	}, Reply: reply}
}
