package ecs

// World owns the entity pool, the registered component stores and a
// deferred destruction queue flushed by the cleanup system at tick end.
// Entities queued for destruction stay in their stores until the flush but
// report Doomed so queries can skip them.
type World struct {
	pool   *Pool
	stores []Removable
	queue  []EntityID
	doomed map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:   NewPool(),
		stores: make([]Removable, 0, 8),
		queue:  make([]EntityID, 0, 64),
		doomed: make(map[EntityID]struct{}),
	}
}

// Register adds a component store so destroyed entities are removed from it.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

// Alive reports whether id is live and not queued for destruction.
func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id) && !w.Doomed(id)
}

func (w *World) Doomed(id EntityID) bool {
	_, ok := w.doomed[id]
	return ok
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Marking twice is harmless.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.pool.Alive(id) || w.Doomed(id) {
		return
	}
	w.doomed[id] = struct{}{}
	w.queue = append(w.queue, id)
}

// Pending returns the number of entities awaiting destruction.
func (w *World) Pending() int {
	return len(w.queue)
}

// FlushDestroyQueue destroys all queued entities and strips their components.
func (w *World) FlushDestroyQueue() int {
	n := len(w.queue)
	for _, id := range w.queue {
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
		delete(w.doomed, id)
	}
	w.queue = w.queue[:0]
	return n
}
