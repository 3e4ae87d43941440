package services

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/lborres/veil/core"
)

// FakeDirectory is a test-only fake implementing core.Directory.
// It stores records in maps and exposes error fields for behavior
// injection plus a lookup counter for no-lookup assertions.
type FakeDirectory struct {
	byEmail map[string]*core.User
	byID    map[string]*core.User
	mu      sync.RWMutex

	getErr    error
	createErr error
	updateErr error

	Lookups int
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		byEmail: make(map[string]*core.User),
		byID:    make(map[string]*core.User),
	}
}

// FailGets makes every lookup return err.
func (f *FakeDirectory) FailGets(err error) { f.getErr = err }

// FailCreates makes every create return err.
func (f *FakeDirectory) FailCreates(err error) { f.createErr = err }

// FailUpdates makes every update return err.
func (f *FakeDirectory) FailUpdates(err error) { f.updateErr = err }

func (f *FakeDirectory) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	f.mu.Lock()
	f.Lookups++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *FakeDirectory) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	f.mu.Lock()
	f.Lookups++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *FakeDirectory) CreateUser(_ context.Context, u *core.User) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if u.ID == "" {
		u.ID = ulid.Make().String()
	}
	if u.Role == "" {
		u.Role = "USER"
	}

	stored := *u
	f.byEmail[u.Email] = &stored
	f.byID[u.ID] = &stored
	return nil
}

func (f *FakeDirectory) UpdateUser(_ context.Context, id string, patch core.UserPatch) (*core.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}

	if patch.Email != nil {
		delete(f.byEmail, u.Email)
		u.Email = *patch.Email
		f.byEmail[u.Email] = u
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Image != nil {
		u.Image = patch.Image
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = patch.PasswordHash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}

	copied := *u
	return &copied, nil
}

// Seed inserts a record directly, bypassing error injection.
func (f *FakeDirectory) Seed(u *core.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = ulid.Make().String()
	}
	stored := *u
	f.byEmail[u.Email] = &stored
	f.byID[u.ID] = &stored
}

// boundBinding returns a binding attached to the fake directory.
func boundBinding(dir core.Directory) *core.Binding {
	return core.ResolveBinding(context.Background(), core.RuntimeNode, dir, nil, nil)
}

// unboundBinding returns an edge-runtime binding with no directory.
func unboundBinding() *core.Binding {
	return core.ResolveBinding(context.Background(), core.RuntimeEdge, nil, nil, nil)
}
