package ecs

// EntityID packs a 32-bit slot index (low bits) and a 32-bit generation
// (high bits). The generation is bumped on destroy so stale IDs never
// resolve to a recycled slot.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }

// Pool hands out generational IDs and recycles freed slots.
type Pool struct {
	generations []uint32
	free        []uint32
	next        uint32
}

func NewPool() *Pool {
	return &Pool{
		generations: make([]uint32, 0, 256),
		free:        make([]uint32, 0, 64),
	}
}

func (p *Pool) Create() EntityID {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.next
	p.next++
	p.generations = append(p.generations, 0)
	return NewEntityID(idx, p.generations[idx])
}

func (p *Pool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx >= p.next {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *Pool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return
	}
	idx := id.Index()
	p.generations[idx]++
	p.free = append(p.free, idx)
}
