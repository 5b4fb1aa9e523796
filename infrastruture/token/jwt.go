package token

import (
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// ClaimSessionID is the claim carrying the ID of the session a token controls.
const ClaimSessionID = "gameID"

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSession = errors.New("token carries no session")
)

var _ i.Tokenizer = &JwtService{}

// JwtService handles JWT operations.
// Implements i.Tokenizer.
type JwtService struct {
	secretKey string
	issuer    string
}

// NewJwtService creates a new JWT Service with the provided configuration.
func NewJwtService(secretKey, issuer string) *JwtService {
	return &JwtService{
		secretKey: secretKey,
		issuer:    issuer,
	}
}

// Issue creates a token granting control of sessionID until ttl elapses.
func (s *JwtService) Issue(sessionID uuid.UUID, ttl time.Duration) (string, error) {
	return s.Generate(map[string]interface{}{ClaimSessionID: sessionID.String()}, ttl)
}

// SessionID validates token and returns the session it controls.
func (s *JwtService) SessionID(token string) (uuid.UUID, error) {
	claims, err := s.Decode(token)
	if err != nil {
		return uuid.Nil, err
	}

	raw, ok := claims[ClaimSessionID].(string)
	if !ok {
		return uuid.Nil, ErrMissingSession
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrMissingSession
	}
	return id, nil
}

// Generate creates a JWT for the given claims.
func (s *JwtService) Generate(claims map[string]interface{}, expTime time.Duration) (string, error) {
	now := time.Now().UTC()
	jwtClaims := jwt.MapClaims{
		"exp": now.Add(expTime).Unix(),
		"iat": now.Unix(),
		"iss": s.issuer,
	}
	for key, val := range claims {
		jwtClaims[key] = val
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	return token.SignedString([]byte(s.secretKey))
}

// Decode parses and validates a JWT, returning the claims if valid.
func (s *JwtService) Decode(tokenString string) (map[string]interface{}, error) {
	token, err := jwt.Parse(tokenString, s.getSigningKey)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// getSigningKey returns the signing key for token validation.
func (s *JwtService) getSigningKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return []byte(s.secretKey), nil
}
