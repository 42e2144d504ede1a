package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

const issuer = "bookstore-checkout"

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Manager JWT管理器
// Access Token短期有效,用于API鉴权;Refresh Token长期有效,只用于换取新的Access Token
type Manager struct {
	secret             []byte
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
	now                func() time.Time
}

// NewManager 创建JWT管理器
func NewManager(secret string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:             []byte(secret),
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
		now:                time.Now,
	}
}

// Claims 自定义Claims
// Role区分普通顾客和店员,订单状态维护等接口只对店员开放
type Claims struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role,omitempty"`
	Type     string `json:"typ"` // access | refresh
	jwt.RegisteredClaims
}

// TokenPair Access + Refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Access Token有效期(秒)
}

// Identity 签发Token所需的用户信息
type Identity struct {
	UserID   uint
	Email    string
	Nickname string
	Role     string
}

// GenerateToken 生成Token对
func (m *Manager) GenerateToken(id Identity) (*TokenPair, error) {
	access, err := m.sign(Claims{
		UserID:   id.UserID,
		Email:    id.Email,
		Nickname: id.Nickname,
		Role:     id.Role,
		Type:     tokenTypeAccess,
	}, m.accessTokenExpire)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	// Refresh Token只带UserID
	refresh, err := m.sign(Claims{UserID: id.UserID, Type: tokenTypeRefresh}, m.refreshTokenExpire)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Refresh Token失败")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
	}, nil
}

// ParseToken 校验Access Token,Refresh Token不能用于鉴权
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, tokenTypeAccess)
}

// parse 校验签名、exp、nbf和Token类型
func (m *Manager) parse(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Type == tokenType {
		return claims, nil
	}
	return nil, apperrors.ErrInvalidToken
}

// RefreshAccessToken 用Refresh Token换取新的Access Token
// 身份字段需要调用方从用户仓储重新加载后传入
func (m *Manager) RefreshAccessToken(refreshToken string, load func(userID uint) (Identity, error)) (string, error) {
	claims, err := m.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", err
	}

	id, err := load(claims.UserID)
	if err != nil {
		return "", err
	}

	token, err := m.sign(Claims{
		UserID:   id.UserID,
		Email:    id.Email,
		Nickname: id.Nickname,
		Role:     id.Role,
		Type:     tokenTypeAccess,
	}, m.accessTokenExpire)
	if err != nil {
		return "", apperrors.Wrap(err, "刷新Token失败")
	}
	return token, nil
}

func (m *Manager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   strconv.FormatUint(uint64(claims.UserID), 10),
		ID:        uuid.NewString(), // 同一秒内签发的Token也互不相同,黑名单按Token精确匹配
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}
