// Package jwt 封装访问令牌的签发与校验
// 双令牌方案：Access Token 做接口鉴权，Refresh Token 换发新的 Access Token
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "stogram"

// Subject 取值，中间件据此区分令牌用途
const (
	SubjectAccess  = "access_token"
	SubjectRefresh = "refresh_token"
)

var (
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
)

// Init 设置签名密钥与两类令牌的有效期
func Init(signSecret string, accessExpiryMinutes, refreshExpiryHours int) {
	secret = []byte(signSecret)
	accessExpiry = time.Duration(accessExpiryMinutes) * time.Minute
	refreshExpiry = time.Duration(refreshExpiryHours) * time.Hour
}

// Claims 自定义声明
type Claims struct {
	UserID string `json:"user_id"`
	// TokenID 仅 Refresh Token 携带，配合缓存实现单点互踢
	TokenID string `json:"token_id,omitempty"`
	jwt.RegisteredClaims
}

func sign(userID, tokenID, subject string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subject,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// GenerateAccessToken 签发短期 Access Token
func GenerateAccessToken(userID string) (string, error) {
	return sign(userID, "", SubjectAccess, accessExpiry)
}

// GenerateRefreshToken 签发长期 Refresh Token
// 返回的 tokenID 由调用方写入缓存，换发时校验是否仍有效
func GenerateRefreshToken(userID string) (tokenString string, tokenID string, err error) {
	tokenID = uuid.NewString()
	tokenString, err = sign(userID, tokenID, SubjectRefresh, refreshExpiry)
	return
}

// ParseToken 解析并校验令牌签名与有效期
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
