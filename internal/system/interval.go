package system

import "time"

// interval gates a periodic operation on accumulated tick time. A long
// tick fires at most once; the remainder carries over.
type interval struct {
	acc time.Duration
}

func (i *interval) due(dt, every time.Duration) bool {
	i.acc += dt
	if every <= 0 || i.acc < every {
		return false
	}
	i.acc %= every
	return true
}

func (i *interval) reset() { i.acc = 0 }
