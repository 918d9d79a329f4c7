package users

import (
	"context"
	"sync"
	"time"
)

// RepoMock is an in-memory users repo, used by handler and router tests across packages.
type RepoMock struct {
	Users map[int]*User
	mutex sync.Mutex
}

func NewRepoMock() *RepoMock {
	return &RepoMock{
		Users: make(map[int]*User),
	}
}

func (r *RepoMock) Add(_ context.Context, user *User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, u := range r.Users {
		if u.Email == user.Email {
			return ErrUserExists
		}
	}

	user.Role = RoleReader
	if len(r.Users) == 0 {
		user.Role = RoleAdmin
	}
	user.ID = len(r.Users) + 1
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	stored := *user
	r.Users[user.ID] = &stored
	return nil
}

func (r *RepoMock) Get(_ context.Context, id int) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, ok := r.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *u
	return &found, nil
}

func (r *RepoMock) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, u := range r.Users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}
