package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/otee21c/learning-system-sub000/config"
)

var (
	ErrTokenExpired = errors.New("토큰이 만료되었습니다")
	ErrTokenInvalid = errors.New("유효하지 않은 토큰입니다")
)

// Claims 외부 인증 시스템과 공유하는 클레임
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`   // admin | teacher
	Branch    string `json:"branch"` // 소속 지점, 비어 있으면 전체
	TokenType string `json:"token_type"`
	jwtv5.RegisteredClaims
}

// Manager JWT 검증기
type Manager struct {
	secret         []byte
	issuer         string
	accessTokenTTL time.Duration
}

// NewManager 검증기 생성
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:         []byte(cfg.JWTSecret),
		issuer:         cfg.Issuer,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// GenerateAccessToken 액세스 토큰 발급
// 운영 발급은 외부 인증 시스템이 하며, 이 함수는 내부 도구와 테스트에서 쓴다
func (m *Manager) GenerateAccessToken(userID, role, branch string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		Branch:    branch,
		TokenType: "access",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.accessTokenTTL)),
			Issuer:    m.issuer,
		},
	}

	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseToken 서명과 만료, 발급자를 검증한다
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	opts := []jwtv5.ParserOption{jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(m.issuer))
	}

	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
