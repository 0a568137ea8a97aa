package profile

import (
	"context"
	"encoding/json"
	"sync"
)

var _ profileRepo = (*repoMock)(nil)

type repoMock struct {
	stored  []byte
	getErr  error
	upserts int
	mutex   sync.Mutex
}

func newRepoMock(p *Profile) *repoMock {
	m := &repoMock{}
	if p != nil {
		m.stored, _ = json.Marshal(p)
	}
	return m
}

func (r *repoMock) Get(_ context.Context) (*Profile, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.stored == nil {
		return nil, ErrProfileNotFound
	}

	p := &Profile{}
	if err := json.Unmarshal(r.stored, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoMock) Upsert(_ context.Context, p *Profile) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.stored = stored
	r.upserts++
	return nil
}
