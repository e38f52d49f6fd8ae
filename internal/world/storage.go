package world

import "sort"

// Storage is the item store of a building; cores receive the base loadout.
type Storage struct {
	items map[string]int
}

func NewStorage() *Storage {
	return &Storage{items: make(map[string]int, 4)}
}

// Add stacks amount onto item. Non-positive amounts are ignored.
func (s *Storage) Add(item string, amount int) {
	if amount <= 0 {
		return
	}
	s.items[item] += amount
}

// Remove takes up to amount of item and returns how much was taken.
func (s *Storage) Remove(item string, amount int) int {
	have := s.items[item]
	if amount > have {
		amount = have
	}
	if amount <= 0 {
		return 0
	}
	if have == amount {
		delete(s.items, item)
	} else {
		s.items[item] = have - amount
	}
	return amount
}

func (s *Storage) Count(item string) int {
	return s.items[item]
}

// Items returns the stored item names in sorted order.
func (s *Storage) Items() []string {
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Storage) Size() int {
	return len(s.items)
}
