package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/config"
	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/upstream"
)

const (
	CookieName  = "token"
	LandingPath = "/waiter/tables"
	LoginPath   = "/login"
)

const (
	sweepEvery = time.Minute
	maxCached  = 4096
)

// UserLookup is the server-side identity check used by the server policy.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
}

type Options struct {
	Policy       config.SessionPolicy
	Lookup       UserLookup
	Revalidate   time.Duration
	CookieSecure bool
	Now          func() time.Time
}

type cached struct {
	session *models.Session
	until   time.Time
}

// Store owns the mapping from a token cookie to a session.
type Store struct {
	opts Options

	mu    sync.Mutex
	cache map[string]cached
	swept time.Time
}

func NewStore(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == "" {
		opts.Policy = config.PolicyServer
	}
	return &Store{opts: opts, cache: make(map[string]cached), swept: opts.Now()}
}

// Login persists the token and resolves its session. A token that cannot be
// resolved is discarded and the caller is sent back to the login screen.
func (s *Store) Login(ctx context.Context, w http.ResponseWriter, token string) (*models.Session, string) {
	session, err := s.resolve(ctx, token)
	if err != nil {
		logrus.WithError(err).Debug("login token rejected")
		s.Discard(w)
		return nil, LoginPath
	}
	http.SetCookie(w, s.cookie(token))
	return session, LandingPath
}

// Logout removes the persisted token and forgets its session.
func (s *Store) Logout(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		s.forget(c.Value)
	}
	s.Discard(w)
	return LoginPath
}

// Rehydrate resolves the request's session, or nil. It never fails: a corrupt
// or revoked token is discarded, a transient lookup failure keeps the cookie.
func (s *Store) Rehydrate(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.Session {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	session, err := s.resolve(ctx, c.Value)
	switch {
	case err == nil:
		return session
	case errors.Is(err, ErrInvalidToken), upstream.IsUnauthorized(err):
		logrus.WithError(err).Debug("discarding session token")
		s.forget(c.Value)
		s.Discard(w)
	default:
		logrus.WithError(err).Warn("session rehydration failed")
	}
	return nil
}

// Token returns the raw token cookie, if any.
func Token(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Discard expires the token cookie.
func (s *Store) Discard(w http.ResponseWriter) {
	c := s.cookie("")
	c.Expires = time.Unix(0, 0)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func (s *Store) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Store) resolve(ctx context.Context, token string) (*models.Session, error) {
	now := s.opts.Now()
	if session, ok := s.lookupCache(token, now); ok {
		return session, nil
	}

	claims, err := Decode(token, now)
	if err != nil {
		return nil, err
	}

	var session *models.Session
	if s.opts.Policy == config.PolicyClaims || s.opts.Lookup == nil {
		session = &models.Session{
			UserID:     claims.Identity(),
			Email:      claims.Email,
			Role:       models.ParseRole(claims.Role),
			BusinessID: claims.BusinessID,
		}
	} else {
		user, err := s.opts.Lookup.GetUser(upstream.WithToken(ctx, token), claims.Identity())
		if err != nil {
			return nil, err
		}
		session = models.SessionFromUser(user)
	}
	if !session.Valid() {
		return nil, errors.Join(ErrInvalidToken, errors.New("incomplete session"))
	}

	until := now.Add(s.opts.Revalidate)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(until) {
		until = claims.ExpiresAt.Time
	}
	s.mu.Lock()
	s.cache[token] = cached{session: session, until: until}
	s.sweepLocked(now)
	s.mu.Unlock()
	return session, nil
}

// sweepLocked drops expired entries, at most once per sweepEvery unless the
// cache has grown past maxCached.
func (s *Store) sweepLocked(now time.Time) {
	if now.Sub(s.swept) < sweepEvery && len(s.cache) < maxCached {
		return
	}
	for token, entry := range s.cache {
		if !now.Before(entry.until) {
			delete(s.cache, token)
		}
	}
	s.swept = now
}

func (s *Store) lookupCache(token string, now time.Time) (*models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[token]
	if !ok {
		return nil, false
	}
	if !now.Before(entry.until) {
		delete(s.cache, token)
		return nil, false
	}
	return entry.session, true
}

func (s *Store) forget(token string) {
	s.mu.Lock()
	delete(s.cache, token)
	s.mu.Unlock()
}
