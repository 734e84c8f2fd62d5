// Package auth guards the admin dashboard with a password-checked session
// cookie.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"velo-registration/internal/config"
)

const (
	CookieName = "velo_admin"
	issuer     = "velo-registration"
	subject    = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBadSession         = errors.New("bad session")
)

type Sessions struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessions prepares the admin credential. Without a configured password
// every login is refused. Without a session secret a random one is used, so
// sessions do not survive a restart.
func NewSessions(cfg config.AdminConfig, log logrus.FieldLogger) (*Sessions, error) {
	s := &Sessions{ttl: cfg.SessionTTL, secure: cfg.CookieSecure, now: time.Now}

	switch {
	case cfg.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		s.hash = []byte(cfg.PasswordHash)
	case cfg.Password != "":
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.hash = h
	default:
		log.Warn("no admin password configured; admin login disabled")
	}

	if cfg.SessionSecret != "" {
		s.secret = []byte(cfg.SessionSecret)
	} else {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("session secret: %w", err)
		}
		log.Warn("SESSION_SECRET not set; using a random one")
	}
	return s, nil
}

// Login checks password and returns a signed session token.
func (s *Sessions) Login(password string) (string, error) {
	if s.hash == nil || bcrypt.CompareHashAndPassword(s.hash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	return tok.SignedString(s.secret)
}

func (s *Sessions) Verify(token string) error {
	if token == "" {
		return ErrBadSession
	}
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return fmt.Errorf("%w: %v", ErrBadSession, err)
	}
	return nil
}

func (s *Sessions) TTL() time.Duration { return s.ttl }
