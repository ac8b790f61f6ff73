package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stockdesk/console/internal/apiclient"
)

// ServiceAccount keeps the worker logged in to the inventory API with its
// own credentials.
type ServiceAccount struct {
	session  *apiclient.Session
	username string
	password string
	now      func() time.Time
	mu       sync.Mutex
}

// NewServiceAccount binds client to an in-memory token.
func NewServiceAccount(client *apiclient.Client, username, password string) *ServiceAccount {
	return &ServiceAccount{
		session:  client.Bind(apiclient.NewMemoryStore("")),
		username: username,
		password: password,
		now:      time.Now,
	}
}

// Run calls fn with a logged-in session. A 401 during fn triggers one fresh
// login and a retry.
func (a *ServiceAccount) Run(ctx context.Context, fn func(context.Context, *apiclient.Session) error) error {
	if err := a.ensure(ctx, false); err != nil {
		return err
	}
	err := fn(ctx, a.session)
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}
	if err := a.ensure(ctx, true); err != nil {
		return err
	}
	return fn(ctx, a.session)
}

func (a *ServiceAccount) ensure(ctx context.Context, force bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	token := a.session.Store().AccessToken()
	if !force && !apiclient.TokenExpired(token, a.now()) {
		return nil
	}
	if a.username == "" || a.password == "" {
		return errors.New("jobs: service credentials not configured")
	}
	if err := a.session.Login(ctx, a.username, a.password); err != nil {
		return fmt.Errorf("jobs: service login: %w", err)
	}
	return nil
}
