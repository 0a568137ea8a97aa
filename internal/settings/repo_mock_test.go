package settings

import (
	"context"
	"encoding/json"
	"sync"
)

var _ settingsRepo = (*repoMock)(nil)

type repoMock struct {
	stored  []byte
	creates int
	saves   int
	mutex   sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{}
}

func (r *repoMock) GetOrCreate(_ context.Context) (*Settings, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.stored == nil {
		stored, err := json.Marshal(Defaults())
		if err != nil {
			return nil, err
		}
		r.stored = stored
		r.creates++
	}

	s := &Settings{}
	return s, json.Unmarshal(r.stored, s)
}

func (r *repoMock) Save(_ context.Context, s *Settings) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.stored = stored
	r.saves++
	return nil
}
