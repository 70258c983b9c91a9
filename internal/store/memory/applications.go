package memory

import (
	"context"
	"sync"

	"interviews/backend/internal/store"
)

// Applications is a fixed application directory, seeded by the caller.
type Applications struct {
	mu   sync.RWMutex
	apps map[string]store.Application
}

func NewApplications(apps ...store.Application) *Applications {
	a := &Applications{apps: make(map[string]store.Application, len(apps))}
	for _, app := range apps {
		a.apps[app.ID] = app
	}
	return a
}

func (a *Applications) Put(app store.Application) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.apps[app.ID] = app
}

func (a *Applications) GetApplication(ctx context.Context, applicationID string) (store.Application, error) {
	if err := ctx.Err(); err != nil {
		return store.Application{}, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	app, ok := a.apps[applicationID]
	if !ok {
		return store.Application{}, store.ErrNotFound
	}
	return app, nil
}
