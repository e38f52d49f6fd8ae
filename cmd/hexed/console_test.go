package main

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hexedgo/server/internal/hud"
	"github.com/hexedgo/server/internal/match"
	"github.com/hexedgo/server/internal/system"
)

func newConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()
	p, err := hud.New("en")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	return &console{inbox: system.NewInbox(4), hud: p, out: &out, generator: "anuke", timeout: time.Second}, &out
}

func TestConsoleParse(t *testing.T) {
	c, _ := newConsole(t)
	reply := make(chan error, 1)

	tests := []struct {
		line string
		want system.Command
	}{
		{"start", system.Start{Generator: "anuke", Reply: reply}},
		{"start quad", system.Start{Generator: "quad", Reply: reply}},
		{"join p1", system.Join{Player: "p1", Name: "p1", Real: true, Reply: reply}},
		{"join p1 Big Al", system.Join{Player: "p1", Name: "Big Al", Real: true, Reply: reply}},
		{"rejoin p1", system.Join{Player: "p1", Reply: reply}},
		{"leave p1", system.Leave{Player: "p1", Reason: match.LeaveDisconnect, Reply: reply}},
		{"spectate p1", system.Leave{Player: "p1", Reason: match.LeaveSpectate, Reply: reply}},
		{"settime 85m", system.SetTime{Elapsed: 85 * time.Minute, Reply: reply}},
	}
	for _, tt := range tests {
		got, err := c.parse(tt.line, reply)
		if err != nil {
			t.Fatalf("%q: %v", tt.line, err)
		}
		if got != tt.want {
			t.Errorf("%q = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestConsoleParseRejects(t *testing.T) {
	c, _ := newConsole(t)
	for _, line := range []string{"join", "rejoin", "leave a b", "settime soon", "settime -1m", "controlled x", "controlled 300", "status p1 1"} {
		if _, err := c.parse(line, nil); !errors.Is(err, errUsage) {
			t.Errorf("%q: err = %v, want usage", line, err)
		}
	}
	if _, err := c.parse("dance", nil); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unknown command err = %v", err)
	}
}

func TestConsoleQueriesRenderOnApply(t *testing.T) {
	c, out := newConsole(t)
	h, _ := testHost(t)
	in := system.NewInputSystem(h, c.inbox, 0, zap.NewNop())

	for _, line := range []string{"leaderboard", "time", "controlled 1"} {
		cmd, err := c.parse(line, nil)
		if err != nil {
			t.Fatal(err)
		}
		c.inbox.Send(cmd)
	}
	in.Update(time.Millisecond)

	got := out.String()
	for _, want := range []string{"Leaderboard (1:30:00 left)", "Time remaining: 1:30:00", "team-1 holds no hexes."} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestParseOptions(t *testing.T) {
	t.Setenv("HEXED_CONFIG", "from-env.toml")
	opts, err := parseOptions(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil || opts.ConfigPath != "from-env.toml" || opts.Console {
		t.Fatalf("env options = %+v, %v", opts, err)
	}
	opts, err = parseOptions(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-config", "x.toml", "-console"})
	if err != nil || opts.ConfigPath != "x.toml" || !opts.Console {
		t.Fatalf("flag options = %+v, %v", opts, err)
	}
}
