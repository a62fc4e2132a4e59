package anonymous

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Session is what a guest receives when it starts shopping without an account.
type Session struct {
	GuestID      string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Service issues signed guest tokens. Guest identity lives entirely in the
// token so nothing is persisted until the guest cart itself is written.
type Service struct {
	tokens     *tokenManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New creates a Service signing with secret. accessTTL <= 0 falls back to 72h.
func New(secret string, accessTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = 72 * time.Hour
	}
	return &Service{
		tokens:     newTokenManager([]byte(secret)),
		accessTTL:  accessTTL,
		refreshTTL: 30 * 24 * time.Hour,
	}
}

// Issue starts a new guest session.
func (s *Service) Issue(ctx context.Context) (Session, error) {
	return s.issueFor(uuid.NewString())
}

// Refresh exchanges a refresh token for a new session of the same guest.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tokens.Validate(refreshToken, kindRefresh)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	return s.issueFor(claims.Subject)
}

// LookupByToken returns the guest id carried by a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Validate(token, kindAccess)
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func (s *Service) issueFor(guestID string) (Session, error) {
	access, exp, err := s.tokens.Issue(guestID, kindAccess, s.accessTTL)
	if err != nil {
		return Session{}, err
	}
	refresh, _, err := s.tokens.Issue(guestID, kindRefresh, s.refreshTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		GuestID:      guestID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
	}, nil
}
