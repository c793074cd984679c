package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/core/identity"
)

const tokenContextKey = "userToken"

func newJWTConfig(secret string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secret),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64         `json:"oriat,omitempty"`
	Email        string        `json:"email,omitempty"`
	Name         string        `json:"name,omitempty"`
	Role         identity.Role `json:"role,omitempty"`
	IsAdmin      bool          `json:"is_admin,omitempty"` // -> ADMIN PORTAL
}

// Session returns the caller described by the claims.
func (c Claims) Session() identity.Session {
	return identity.Session{UserID: c.Subject, Email: c.Email, Name: c.Name, Role: c.Role}
}

func getSessionClaims(conf *core.Config, sess identity.Session, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   sess.UserID,
			Audience:  "Portal",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        sess.Email,
		Name:         sess.Name,
		Role:         sess.Role,
		IsAdmin:      sess.IsAdmin(),
	}
}

// IssueToken returns a signed token for sess.
func (s *Server) IssueToken(sess identity.Session) (string, error) {
	return s.generateToken(getSessionClaims(s.deps.Conf, sess))
}

// generateToken generates a signed JWT token string representing the user Claims.
func (s *Server) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(s.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(s.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (s *Server) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(s.deps.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := s.generateToken(getSessionClaims(s.deps.Conf, claims.Session(), claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
