package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid token claims")
)

type JWTServiceInterface interface {
	GenerateJWT(creatorID uuid.UUID, role string, expirationTime time.Time) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Claims struct {
	CreatorID string `json:"creator_id"`
	Role      string `json:"role"`
	jwt.StandardClaims
}

type JWTService struct {
	secret []byte
	issuer string
}

func NewJWTService(secret, issuer string) *JWTService {
	return &JWTService{secret: []byte(secret), issuer: issuer}
}

func (s *JWTService) GenerateJWT(creatorID uuid.UUID, role string, expirationTime time.Time) (string, error) {
	claims := Claims{
		CreatorID: creatorID.String(),
		Role:      role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			Issuer:    s.issuer,
			Subject:   creatorID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Issuer != s.issuer {
		return nil, ErrInvalidClaims
	}
	if claims.Role != RoleCreator && claims.Role != RoleAdmin {
		return nil, ErrInvalidClaims
	}
	if _, err := uuid.Parse(claims.CreatorID); err != nil {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
