package auth

import (
	"context"
	"sync"
	"time"
)

type adminRepoMock struct {
	mutex  sync.Mutex
	admins map[string]*Admin
}

func newAdminRepoMock(admins ...*Admin) *adminRepoMock {
	m := &adminRepoMock{
		admins: make(map[string]*Admin),
	}
	for _, a := range admins {
		m.admins[a.Username] = a
	}
	return m
}

func (m *adminRepoMock) GetByUsername(_ context.Context, username string) (*Admin, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	admin, ok := m.admins[username]
	if !ok {
		return nil, ErrAdminNotFound
	}
	adminCopy := *admin
	return &adminCopy, nil
}

func (m *adminRepoMock) UpdateLastLogin(_ context.Context, id int, at time.Time) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, a := range m.admins {
		if a.ID == id {
			a.LastLoginAt = &at
			return nil
		}
	}
	return ErrAdminNotFound
}
