package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kendall-kelly/repair-shop-api/models"
)

// Token audiences keep staff and client identities disjoint
const (
	StaffAudience  = "staff"
	ClientAudience = "client"
)

// TokenClaims is the JWT payload issued by the API
type TokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues HS256 bearer tokens
type TokenService struct {
	secret    []byte
	issuer    string
	staffTTL  time.Duration
	clientTTL time.Duration
	now       func() time.Time
}

// NewTokenService creates a token issuer
func NewTokenService(secret, issuer string, staffTTL, clientTTL time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		issuer:    issuer,
		staffTTL:  staffTTL,
		clientTTL: clientTTL,
		now:       time.Now,
	}
}

// IssuedToken is a signed token with its expiry
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueStaffToken signs a token for a staff user
func (s *TokenService) IssueStaffToken(user *models.User) (*IssuedToken, error) {
	return s.issue(user.ID, StaffAudience, string(user.Role), s.staffTTL)
}

// IssueClientToken signs a token for a client
func (s *TokenService) IssueClientToken(client *models.Client) (*IssuedToken, error) {
	return s.issue(client.ID, ClientAudience, "", s.clientTTL)
}

func (s *TokenService) issue(id uint, audience, role string, ttl time.Duration) (*IssuedToken, error) {
	now := s.now()
	expires := now.Add(ttl)
	claims := TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(id), 10),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &IssuedToken{Token: signed, ExpiresAt: expires}, nil
}
