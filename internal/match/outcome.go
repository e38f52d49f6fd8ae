package match

import (
	"sort"
	"time"

	"github.com/hexedgo/server/internal/territory"
)

type Reason uint8

const (
	ReasonDomination Reason = iota // one team holds every zone
	ReasonTimeout
)

func (r Reason) String() string {
	if r == ReasonTimeout {
		return "timeout"
	}
	return "domination"
}

// Outcome is the resolved result of a match. Winners are every team tied at
// the highest controlled-zone count, in TeamID order.
type Outcome struct {
	Winners []territory.TeamID
	Counts  map[territory.TeamID]int
	Elapsed time.Duration
	Reason  Reason
}

func (o Outcome) Draw() bool     { return len(o.Winners) > 1 }
func (o Outcome) NoWinner() bool { return len(o.Winners) == 0 }

// Winner returns the single winning team.
func (o Outcome) Winner() (territory.TeamID, bool) {
	if len(o.Winners) != 1 {
		return territory.Derelict, false
	}
	return o.Winners[0], true
}

// Resolver decides when a match is over and who won. It resolves at most once.
type Resolver struct {
	ledger    *territory.Ledger
	concluded bool
	outcome   Outcome
}

func NewResolver(ledger *territory.Ledger) *Resolver {
	return &Resolver{ledger: ledger}
}

// CheckDomination resolves when one team controls every zone.
func (r *Resolver) CheckDomination(elapsed time.Duration) (Outcome, bool) {
	if r.concluded {
		return Outcome{}, false
	}
	total := r.ledger.Layout().Len()
	for _, n := range r.ledger.Counts() {
		if n == total {
			return r.Resolve(ReasonDomination, elapsed)
		}
	}
	return Outcome{}, false
}

// CheckTimeout resolves once the match clock has run out.
func (r *Resolver) CheckTimeout(clock *MatchClock) (Outcome, bool) {
	if r.concluded || !clock.Expired() {
		return Outcome{}, false
	}
	return r.Resolve(ReasonTimeout, clock.Elapsed())
}

// Resolve concludes the match from the current ledger counts. It reports
// false if the match was already concluded.
func (r *Resolver) Resolve(reason Reason, elapsed time.Duration) (Outcome, bool) {
	if r.concluded {
		return Outcome{}, false
	}
	counts := r.ledger.Counts()
	r.concluded = true
	r.outcome = Outcome{
		Winners: winners(counts),
		Counts:  counts,
		Elapsed: elapsed,
		Reason:  reason,
	}
	return r.outcome, true
}

func (r *Resolver) Concluded() bool { return r.concluded }

// Result returns the outcome once concluded.
func (r *Resolver) Result() (Outcome, bool) {
	return r.outcome, r.concluded
}

// winners is a single-pass tie-aware maximum over counts. A maximum of zero
// has no winners.
func winners(counts map[territory.TeamID]int) []territory.TeamID {
	best := 0
	var tied []territory.TeamID
	for team, n := range counts {
		if !team.Playable() {
			continue
		}
		switch {
		case n > best:
			best = n
			tied = append(tied[:0], team)
		case n == best && n > 0:
			tied = append(tied, team)
		}
	}
	sort.Slice(tied, func(i, j int) bool { return tied[i] < tied[j] })
	return tied
}
