package auth

import (
	"errors"
	"time"

	"github.com/SeakMengs/Signfy/internal/config"
	"github.com/SeakMengs/Signfy/internal/constant"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JWT verifies the access tokens issued by the signing backend. Both services share the
// HS256 secret, so the token a browser holds is accepted here and forwarded unchanged.
type JWT struct {
	logger    *zap.SugaredLogger
	jwtSecret string
}

type JWTInterface interface {
	GenerateAccessToken(payload JWTPayload, ttl time.Duration) (string, error)
	VerifyJwtToken(token string) (*JWTClaims, error)
}

func NewJwt(cfg config.AuthConfig, logger *zap.SugaredLogger) *JWT {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return &JWT{
		jwtSecret: cfg.JWT_SECRET,
		logger:    logger,
	}
}

type JWTPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type JWTClaims struct {
	User JWTPayload `json:"user"`
	Type string     `json:"type"`
	IAT  int64      `json:"iat"`
	EXP  int64      `json:"exp"`
}

// Mostly for tests and local tooling; production tokens come from the signing backend.
func (j JWT) GenerateAccessToken(payload JWTPayload, ttl time.Duration) (string, error) {
	j.logger.Debugf("Generate access token with payload: %v", payload)

	claims := jwt.MapClaims{
		"user": payload,
		"type": constant.JWT_TYPE_ACCESS,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.jwtSecret))
}

func (j JWT) VerifyJwtToken(token string) (*JWTClaims, error) {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(j.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		j.logger.Debugf("Failed to verify jwt token. Error: %v", err)
		return nil, err
	}

	if !parsedToken.Valid {
		j.logger.Debug("Jwt token is not valid")
		return nil, errors.New("jwt token is not valid")
	}

	user, ok := claims["user"].(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid token: user field is missing or malformed")
	}

	id, _ := user["id"].(string)
	if id == "" {
		return nil, errors.New("invalid token: user id is missing")
	}
	email, _ := user["email"].(string)
	name, _ := user["name"].(string)

	// tokens without a type are treated as access tokens
	tokenType, _ := claims["type"].(string)
	if tokenType == "" {
		tokenType = constant.JWT_TYPE_ACCESS
	}

	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	return &JWTClaims{
		User: JWTPayload{
			ID:    id,
			Email: email,
			Name:  name,
		},
		Type: tokenType,
		IAT:  int64(iat),
		EXP:  int64(exp),
	}, nil
}
