package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/config"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
)

type Claims string

var USER_ID_CLAIM = Claims("userId")
var EMAIL_CLAIM = Claims("email")

// TokenClaims are the bearer token claims. Subject carries the user id.
type TokenClaims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

// EmailLookup resolves the primary email of a user when the token does not
// carry one.
type EmailLookup interface {
	PrimaryEmail(ctx context.Context, userID string) (string, error)
}

// Verifier accepts HS256 tokens signed with the access secret and RS256
// session tokens signed by the identity provider.
type Verifier struct {
	accessSecret []byte
	publicKey    *rsa.PublicKey
	emails       EmailLookup
}

func NewVerifier(accessSecret, publicKeyPEM string, emails EmailLookup) (*Verifier, error) {
	v := &Verifier{emails: emails}
	if accessSecret != "" {
		v.accessSecret = []byte(accessSecret)
	}

	if publicKeyPEM != "" {
		// keys passed through env files often have escaped newlines
		pem := strings.ReplaceAll(publicKeyPEM, `\n`, "\n")
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("invalid CLERK_JWT_KEY: %w", err)
		}
		v.publicKey = key
	}
	return v, nil
}

func ProvideVerifier(cfg *config.AppConfig) *Verifier {
	var emails EmailLookup
	if cfg.ClerkSecretKey != "" {
		emails = NewClerkClient(cfg.ClerkSecretKey, "")
	}

	v, err := NewVerifier(cfg.AccessSecret, cfg.ClerkJwtKey, emails)
	if err != nil {
		logger.Fatal("Failed creating token verifier", zap.Error(err))
		return nil
	}
	if v.accessSecret == nil && v.publicKey == nil {
		logger.Warn("No token verification key configured, every request is anonymous")
	}
	return v
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.accessSecret == nil {
			return nil, errors.New("ACCESS-SECRET is not set in environment")
		}
		return v.accessSecret, nil
	case *jwt.SigningMethodRSA:
		if v.publicKey == nil {
			return nil, errors.New("CLERK_JWT_KEY is not set in environment")
		}
		return v.publicKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
}

// Verify checks the token and returns the user id and email. The email is
// looked up when the token has none and a lookup is configured.
func (v *Verifier) Verify(ctx context.Context, token string) (string, string, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, v.keyFunc)
	if err != nil {
		return "", "", err
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return "", "", errors.New("failed reading claims")
	}
	if claims.Subject == "" {
		return "", "", errors.New("token has no subject")
	}

	email := claims.Email
	if email == "" && v.emails != nil {
		email, err = v.emails.PrimaryEmail(ctx, claims.Subject)
		if err != nil {
			// authenticated without an email, which never passes the admin gate
			logger.Warn("Failed looking up user email", zap.String("userId", claims.Subject), zap.Error(err))
			email = ""
		}
	}

	return claims.Subject, email, nil
}

// Middleware authenticates requests that carry a bearer token. Requests
// without an Authorization header continue anonymously; a malformed or
// invalid token is rejected with 401.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		splits := strings.SplitN(authHeader, " ", 2)

		// Check for Bearer scheme (case-insensitive)
		if len(splits) < 2 || !strings.EqualFold(splits[0], "bearer") {
			logger.Error("Bad authorization string")
			api.WriteError(w, api.Unauthenticated("No autorizado", "Token mal formado"))
			return
		}

		userId, email, err := v.Verify(r.Context(), strings.TrimSpace(splits[1]))
		if err != nil {
			logger.Error("Error verifying token", zap.Error(err))
			api.WriteError(w, api.Unauthenticated("No autorizado", "Token inválido"))
			return
		}

		ctx := context.WithValue(r.Context(), USER_ID_CLAIM, userId)
		ctx = context.WithValue(ctx, EMAIL_CLAIM, email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetToken mints an HS256 token with the ACCESS-SECRET from the environment.
func GetToken(userId, email string, ttl time.Duration) (string, error) {
	var ACCESS_SECRET = os.Getenv("ACCESS-SECRET")
	if ACCESS_SECRET == "" {
		return "", errors.New("ACCESS-SECRET is not set in environment")
	}

	now := time.Now()
	atClaims := TokenClaims{Email: email}
	atClaims.Subject = userId
	atClaims.IssuedAt = now.Unix()
	if ttl > 0 {
		atClaims.ExpiresAt = now.Add(ttl).Unix()
	}

	at := jwt.NewWithClaims(jwt.SigningMethodHS256, atClaims)
	token, err := at.SignedString([]byte(ACCESS_SECRET))
	if err != nil {
		logger.Error("Error signing token", zap.Error(err))
		return "", err
	}
	return token, nil
}

func GetUserIdAndEmail(ctx context.Context) (string, string) {
	var userId, email string

	if s, ok := ctx.Value(USER_ID_CLAIM).(string); ok {
		userId = s
	}
	if s, ok := ctx.Value(EMAIL_CLAIM).(string); ok {
		email = s
	}

	return userId, email
}

func IsAuthenticated(ctx context.Context) bool {
	userId, _ := GetUserIdAndEmail(ctx)
	return userId != ""
}
