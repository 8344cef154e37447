// Package identity holds the registered-users table and the current
// session. State persists to the identity snapshot slot after every
// mutation.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"trainswift/internal/domain"
	"trainswift/internal/events"
	"trainswift/internal/metrics"
	"trainswift/internal/models"
	"trainswift/internal/snapshot"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

type storeState struct {
	Version int             `json:"version"`
	Users   []models.User   `json:"users"`
	Session *models.Profile `json:"session,omitempty"`
}

// Store owns the users table and the session. Email matching is exact
// and case-sensitive for both uniqueness and login.
type Store struct {
	mu        sync.Mutex
	users     []models.User
	session   *models.Profile
	hashCost  int
	limiter   *rate.Limiter
	snapshots snapshot.Repository
	bus       domain.EventPublisher
	logger    *zerolog.Logger
}

// Options tune credential hashing and the login attempt limiter.
type Options struct {
	HashCost   int
	LoginRPS   float64
	LoginBurst int
}

// NewStore restores persisted users and session from the snapshot slot.
func NewStore(ctx context.Context, snapshots snapshot.Repository, bus domain.EventPublisher, opts Options, logger *zerolog.Logger) *Store {
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.LoginRPS == 0 {
		opts.LoginRPS = 1
	}
	if opts.LoginBurst == 0 {
		opts.LoginBurst = 5
	}

	s := &Store{
		hashCost:  opts.HashCost,
		limiter:   rate.NewLimiter(rate.Limit(opts.LoginRPS), opts.LoginBurst),
		snapshots: snapshots,
		bus:       bus,
		logger:    logger,
	}

	data, err := snapshots.Load(ctx, snapshot.SlotIdentity)
	if err != nil {
		logger.Error().Err(err).Msg("load identity snapshot failed, starting empty")
		return s
	}
	if data == nil {
		return s
	}

	var state storeState
	if err := json.Unmarshal(data, &state); err != nil || state.Version != snapshot.SchemaVersion {
		logger.Warn().Msg("identity snapshot unreadable or from another schema version, starting empty")
		return s
	}

	s.users = state.Users
	s.session = state.Session
	return s
}

// Signup registers a new account and logs it in immediately. Fails
// with ErrDuplicateEmail when the email exists; the users table and
// session are untouched on failure.
func (s *Store) Signup(ctx context.Context, name, email, password string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return models.Profile{}, ErrDuplicateEmail
		}
	}

	// The reference stored plaintext credentials; hashing here is a
	// deliberate deviation with identical observable behavior.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return models.Profile{}, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	s.users = append(s.users, user)

	profile := user.Sanitize()
	s.session = &profile
	s.saveLocked(ctx)
	metrics.IncStoreOp("identity", "signup")
	s.publish(events.EventUserSignedUp, user)

	return profile, nil
}

// Login verifies the credentials and replaces the session on success.
// On failure the session is untouched.
func (s *Store) Login(ctx context.Context, email, password string) (models.Profile, error) {
	if !s.limiter.Allow() {
		metrics.IncLogin("throttled")
		return models.Profile{}, ErrTooManyAttempts
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			break
		}

		profile := u.Sanitize()
		s.session = &profile
		s.saveLocked(ctx)
		metrics.IncLogin("ok")
		s.publish(events.EventUserLoggedIn, u)
		return profile, nil
	}

	metrics.IncLogin("failed")
	return models.Profile{}, ErrInvalidCredentials
}

// Logout clears the session unconditionally; a no-op when logged out.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}

	userID, email := s.session.ID, s.session.Email
	s.session = nil
	s.saveLocked(ctx)
	metrics.IncStoreOp("identity", "logout")

	if s.bus != nil {
		_ = s.bus.PublishJSON(events.EventUserLoggedOut, events.UserEventPayload{UserID: userID, Email: email})
	}
}

// Current returns the session profile, if any.
func (s *Store) Current() (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return models.Profile{}, false
	}
	return *s.session, true
}

// LoggedIn reports whether a session exists.
func (s *Store) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

// FindByEmail is a sanitized lookup for presentation-layer needs such
// as the bookings export.
func (s *Store) FindByEmail(email string) (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u.Sanitize(), true
		}
	}
	return models.Profile{}, false
}

// UserCount reports the size of the users table.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) publish(eventType string, user models.User) {
	if s.bus == nil {
		return
	}
	payload := events.UserEventPayload{UserID: user.ID, Email: user.Email}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

func (s *Store) saveLocked(ctx context.Context) {
	state := storeState{
		Version: snapshot.SchemaVersion,
		Users:   s.users,
		Session: s.session,
	}
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal identity state failed")
		return
	}
	if err := s.snapshots.Save(ctx, snapshot.SlotIdentity, data); err != nil {
		s.logger.Error().Err(err).Msg("save identity snapshot failed")
	}
}
