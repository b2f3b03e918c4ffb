// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/validate"
)

// DefaultMockDelay is the latency MemoryAuthenticator adds to each call.
const DefaultMockDelay = 300 * time.Millisecond

// MemoryAccount is a login known to MemoryAuthenticator.
type MemoryAccount struct {
	ID       int64
	Email    string
	Password string
	Name     string
	Role     string
}

type memoryUser struct {
	user     model.User
	password string
}

type memoryReset struct {
	userID  int64
	expires time.Time
	used    bool
}

// MemoryAuthenticator keeps accounts in memory. It is meant for local
// development and tests, never for production. With a UserDirectory
// attached, account ids are those of the matching user rows.
type MemoryAuthenticator struct {
	mu        sync.Mutex
	directory UserDirectory
	users     map[string]*memoryUser // by normalized email
	byID      map[int64]*memoryUser
	resets    map[string]*memoryReset // by token hash
	nextID    int64
	sessions  Sessions
	mailer    Mailer
	delay     time.Duration
	now       func() time.Time
}

var _ Authenticator = (*MemoryAuthenticator)(nil)

// NewMemoryAuthenticator creates a MemoryAuthenticator holding accounts.
// sessions and mailer may be nil.
func NewMemoryAuthenticator(sessions Sessions, mailer Mailer, delay time.Duration, accounts ...MemoryAccount) *MemoryAuthenticator {
	if mailer == nil {
		mailer = LogMailer{}
	}
	m := &MemoryAuthenticator{
		users:    make(map[string]*memoryUser),
		byID:     make(map[int64]*memoryUser),
		resets:   make(map[string]*memoryReset),
		sessions: sessions,
		mailer:   mailer,
		delay:    delay,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, a := range accounts {
		m.add(a)
	}
	return m
}

func (m *MemoryAuthenticator) add(a MemoryAccount) *memoryUser {
	if a.ID == 0 {
		a.ID = m.nextID + 1
	}
	if a.ID > m.nextID {
		m.nextID = a.ID
	}
	if a.Role == "" {
		a.Role = model.RoleUser
	}
	now := m.now()
	u := &memoryUser{
		user: model.User{
			ID:        a.ID,
			Email:     NormalizeEmail(a.Email),
			Name:      a.Name,
			Role:      a.Role,
			CreatedAt: now,
			UpdatedAt: now,
		},
		password: a.Password,
	}
	m.users[u.user.Email] = u
	m.byID[u.user.ID] = u
	return u
}

// UseDirectory re-keys every account to the id of its user row, creating
// missing rows, and makes Signup insert rows from then on.
func (m *MemoryAuthenticator) UseDirectory(ctx context.Context, dir UserDirectory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID := make(map[int64]*memoryUser, len(m.users))
	for _, u := range m.users {
		id, found, err := dir.FindUserID(ctx, u.user.Email)
		if err != nil {
			return err
		}
		if !found {
			id, err = dir.CreateUser(ctx, MemoryAccount{
				Email:    u.user.Email,
				Password: u.password,
				Name:     u.user.Name,
				Role:     u.user.Role,
			})
			if err != nil {
				return fmt.Errorf("creating user row for %s: %w", u.user.Email, err)
			}
		}
		u.user.ID = id
		byID[id] = u
	}
	m.byID = byID
	m.resets = make(map[string]*memoryReset)
	m.directory = dir
	return nil
}

// wait simulates a network round trip and honors cancellation.
func (m *MemoryAuthenticator) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MemoryAuthenticator) startSession(ctx context.Context, id int64) error {
	if m.sessions == nil {
		return nil
	}
	if err := m.sessions.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	m.sessions.Put(ctx, SessionKeyUserID, id)
	return nil
}

// Login checks the password against the in-memory account.
func (m *MemoryAuthenticator) Login(ctx context.Context, email, password string) (*model.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "Email and password are required.")
	}
	m.mu.Lock()
	u, ok := m.users[email]
	var user model.User
	if ok {
		user = u.user
	}
	valid := ok && u.password == password
	m.mu.Unlock()
	if !valid {
		return nil, ErrInvalidCredentials
	}
	if err := m.startSession(ctx, user.ID); err != nil {
		return nil, err
	}
	now := m.now()
	user.LastLoginAt = &now
	return &user, nil
}

// Signup adds a regular user.
func (m *MemoryAuthenticator) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	account := MemoryAccount{Email: in.Email, Password: in.Password, Name: in.Name, Role: model.RoleUser}
	m.mu.Lock()
	if _, taken := m.users[in.Email]; taken {
		m.mu.Unlock()
		return nil, apperror.Conflict("user", in.Email)
	}
	if m.directory != nil {
		id, err := m.createRow(ctx, account)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		account.ID = id
	}
	u := m.add(account)
	user := u.user
	m.mu.Unlock()

	if err := m.startSession(ctx, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

// createRow inserts the user row for a new signup. An email that already
// has a row belongs to someone else.
func (m *MemoryAuthenticator) createRow(ctx context.Context, a MemoryAccount) (int64, error) {
	if _, found, err := m.directory.FindUserID(ctx, a.Email); err != nil {
		return 0, err
	} else if found {
		return 0, apperror.Conflict("user", a.Email)
	}
	return m.directory.CreateUser(ctx, a)
}

// Logout destroys the session.
func (m *MemoryAuthenticator) Logout(ctx context.Context) error {
	if m.sessions == nil {
		return nil
	}
	return m.sessions.Destroy(ctx)
}

// User returns an account by id.
func (m *MemoryAuthenticator) User(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	user := u.user
	return &user, nil
}

// ResetPassword mails a reset link for known addresses.
func (m *MemoryAuthenticator) ResetPassword(ctx context.Context, email string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	email = NormalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return apperror.ValidationFailed("email", "Enter a valid email address.")
	}
	m.mu.Lock()
	u, ok := m.users[email]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	token, hash, err := newResetToken()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.resets[hash] = &memoryReset{userID: u.user.ID, expires: m.now().Add(ResetTokenTTL)}
	m.mu.Unlock()
	slog.Debug("mock password reset issued", "email", email)
	return m.mailer.SendPasswordReset(ctx, email, "/reset-password/"+token)
}

// ConfirmPasswordReset sets a new password with a token from ResetPassword.
func (m *MemoryAuthenticator) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	if err := validate.Var(password, "required,min=8,max=128"); err != nil {
		return apperror.ValidationFailed("password", "Password must be at least 8 characters.")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resets[hashToken(token)]
	if !ok || r.used || !m.now().Before(r.expires) {
		return ErrResetTokenInvalid
	}
	u, ok := m.byID[r.userID]
	if !ok {
		return ErrResetTokenInvalid
	}
	r.used = true
	u.password = password
	return nil
}
