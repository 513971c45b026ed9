package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenService issues and validates the JWTs used for API authentication.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Claims is the validated, typed content of an access token.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// GenerateAccessToken creates a token with user ID, email, and role.
func (s *TokenService) GenerateAccessToken(userID uuid.UUID, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"email":   email,
		"role":    role,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// GenerateRefreshToken creates a long-lived refresh token carrying a token ID
// that is persisted for rotation and revocation.
func (s *TokenService) GenerateRefreshToken(userID uuid.UUID) (signed string, tokenID string, expiresAt time.Time, err error) {
	tokenID = uuid.NewString()
	expiresAt = time.Now().Add(30 * 24 * time.Hour)

	claims := jwt.MapClaims{
		"user_id":  userID.String(),
		"token_id": tokenID,
		"exp":      expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err = token.SignedString(s.secret)
	return signed, tokenID, expiresAt, err
}

// ValidateAccessToken parses the token and returns typed claims.
func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	rawID, _ := mapClaims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id claim")
	}

	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	if role == "" {
		return nil, fmt.Errorf("missing role claim")
	}

	return &Claims{UserID: userID, Email: email, Role: role}, nil
}

// ParseRefreshToken extracts the user and token IDs from a refresh token.
func (s *TokenService) ParseRefreshToken(tokenString string) (userID uuid.UUID, tokenID string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}

	rawID, _ := mapClaims["user_id"].(string)
	userID, err = uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid user_id claim")
	}
	tokenID, _ = mapClaims["token_id"].(string)
	if tokenID == "" {
		return uuid.Nil, "", fmt.Errorf("missing token_id claim")
	}
	return userID, tokenID, nil
}
