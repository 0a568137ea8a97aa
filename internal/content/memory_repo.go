package content

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

var _ Repo[Entity] = (*MemoryRepo[Entity])(nil)

// MemoryRepo keeps records as encoded JSON, so callers never share memory with the stored state.
// It backs the handler and seed tests.
type MemoryRepo[E Entity] struct {
	newEntity    func() E
	records      map[int][]byte
	ids          []int
	nextID       int
	failSetOrder map[int]error
	mutex        sync.Mutex
}

func NewMemoryRepo[E Entity](newEntity func() E) *MemoryRepo[E] {
	return &MemoryRepo[E]{
		newEntity:    newEntity,
		records:      make(map[int][]byte),
		nextID:       1,
		failSetOrder: make(map[int]error),
	}
}

// FailSetOrder makes every SetOrder call for the given id return err.
func (r *MemoryRepo[E]) FailSetOrder(id int, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.failSetOrder[id] = err
}

func (r *MemoryRepo[E]) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.ids)
}

func (r *MemoryRepo[E]) All(_ context.Context) ([]E, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := make([]E, 0, len(r.ids))
	for _, id := range r.ids {
		entity, err := r.decode(id)
		if err != nil {
			return nil, err
		}
		all = append(all, entity)
	}
	return all, nil
}

func (r *MemoryRepo[E]) Get(_ context.Context, id int) (E, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.decode(id)
}

func (r *MemoryRepo[E]) Add(_ context.Context, entity E) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if entity.GetID() == 0 {
		entity.SetID(r.nextID)
	}
	if _, exists := r.records[entity.GetID()]; exists {
		return errors.New("record exists already")
	}
	if entity.GetID() >= r.nextID {
		r.nextID = entity.GetID() + 1
	}

	r.ids = append(r.ids, entity.GetID())
	return r.encode(entity)
}

func (r *MemoryRepo[E]) Update(_ context.Context, entity E) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.records[entity.GetID()]; !exists {
		return ErrNotFound
	}
	return r.encode(entity)
}

func (r *MemoryRepo[E]) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.records[id]; !exists {
		return ErrNotFound
	}
	delete(r.records, id)
	r.ids = slices.DeleteFunc(r.ids, func(i int) bool { return i == id })
	return nil
}

func (r *MemoryRepo[E]) DeleteAll(_ context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.records = make(map[int][]byte)
	r.ids = nil
	return nil
}

func (r *MemoryRepo[E]) ToggleVisible(_ context.Context, id int) (E, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entity, err := r.decode(id)
	if err != nil {
		return entity, err
	}
	entity.SetVisible(!entity.IsVisible())
	return entity, r.encode(entity)
}

func (r *MemoryRepo[E]) SetOrder(_ context.Context, id, order int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err, ok := r.failSetOrder[id]; ok {
		return err
	}

	entity, err := r.decode(id)
	if err != nil {
		return err
	}
	entity.SetOrder(order)
	return r.encode(entity)
}

func (r *MemoryRepo[E]) decode(id int) (E, error) {
	entity := r.newEntity()
	raw, exists := r.records[id]
	if !exists {
		var zero E
		return zero, ErrNotFound
	}
	if err := json.Unmarshal(raw, entity); err != nil {
		var zero E
		return zero, err
	}
	entity.SetID(id)
	return entity, nil
}

func (r *MemoryRepo[E]) encode(entity E) error {
	raw, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	r.records[entity.GetID()] = raw
	return nil
}
