package service

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"

	apperrors "maintenance-system/pkg/errors"
)

type JwtCustomClaim struct {
	UserID uint64 `json:"userId"`
	jwt.RegisteredClaims
}

// JWTService проверяет access-токены, выданные внешним сервисом
// авторизации. Выдачи токенов здесь нет: движок только потребляет
// идентификатор действующего пользователя.
type JWTService interface {
	ValidateToken(tokenString string) (*JwtCustomClaim, error)
}

type jwtService struct {
	SecretKey string
}

func NewJWTService(secretKey string) JWTService {
	return &jwtService{SecretKey: secretKey}
}

func (s *jwtService) ValidateToken(tokenString string) (*JwtCustomClaim, error) {
	claims := &JwtCustomClaim{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidSigningMethod
		}
		return []byte(s.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
