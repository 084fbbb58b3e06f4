// Package auth resolves the request viewer from a bearer JWT and exposes it
// through fiber locals.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys populated for authenticated requests. The dashboard and chat
// transports read the same keys.
const (
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
	LocalRoles    = "roles"
	LocalLocale   = "locale"
)

// DefaultLocale is used when the token does not name one.
const DefaultLocale = "en"

var (
	ErrMissingToken = errors.New("auth: missing bearer token")
	ErrInvalidToken = errors.New("auth: invalid token")
	errNoSecret     = errors.New("auth: signing secret is required")
)

// Claims are the JWT claims a viewer token carries.
type Claims struct {
	jwt.RegisteredClaims
	StoreID string   `json:"store_id"`
	Roles   []string `json:"roles"`
	Locale  string   `json:"locale,omitempty"`
}

// Viewer is the identity extracted from a token.
type Viewer struct {
	UserID  string
	StoreID string
	Roles   []string
	Locale  string
}

// Validator signs and verifies HS256 viewer tokens.
type Validator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewValidator creates a validator for the shared secret.
func NewValidator(secret, issuer string) (*Validator, error) {
	if secret == "" {
		return nil, errNoSecret
	}
	return &Validator{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Validate parses a token and returns its viewer.
func (v *Validator) Validate(token string) (Viewer, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Viewer{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Viewer{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Viewer{}, fmt.Errorf("%w: subject is required", ErrInvalidToken)
	}
	if claims.StoreID == "" {
		return Viewer{}, fmt.Errorf("%w: store binding is required", ErrInvalidToken)
	}
	locale := strings.ToLower(claims.Locale)
	if locale == "" {
		locale = DefaultLocale
	}
	return Viewer{UserID: claims.Subject, StoreID: claims.StoreID, Roles: claims.Roles, Locale: locale}, nil
}

// Issue signs a token for viewer valid for ttl.
func (v *Validator) Issue(viewer Viewer, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		StoreID: viewer.StoreID,
		Roles:   viewer.Roles,
		Locale:  viewer.Locale,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Config controls the middleware.
type Config struct {
	Validator *Validator
	// DevBypass injects DevViewer instead of checking tokens.
	DevBypass bool
	DevViewer Viewer
	// PublicPrefixes skip authentication.
	PublicPrefixes []string
	Logger         *slog.Logger
}

// DefaultDevViewer is the demo owner of the RetailJet store.
var DefaultDevViewer = Viewer{UserID: "demo", StoreID: "retailjet", Roles: []string{"owner"}, Locale: DefaultLocale}

// New returns fiber middleware that stores the viewer in locals. Requests
// without a validator are rejected unless DevBypass is set.
func New(cfg Config) fiber.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "auth"))
	dev := cfg.DevViewer
	if dev.UserID == "" {
		dev = DefaultDevViewer
	}
	return func(c *fiber.Ctx) error {
		if isPublic(c.Path(), cfg.PublicPrefixes) {
			// Public routes still see the viewer when one is available.
			if cfg.DevBypass {
				setLocals(c, dev)
			} else if viewer, ok := optionalViewer(c, cfg.Validator); ok {
				setLocals(c, viewer)
			}
			return c.Next()
		}
		if cfg.DevBypass {
			setLocals(c, dev)
			return c.Next()
		}
		if cfg.Validator == nil {
			return unauthorized(c, "Authentication not configured")
		}
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(c, "Missing or malformed Authorization header")
		}
		viewer, err := cfg.Validator.Validate(token)
		if err != nil {
			logger.DebugContext(c.UserContext(), "token rejected",
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
			return unauthorized(c, "Invalid or expired token")
		}
		setLocals(c, viewer)
		return c.Next()
	}
}

func optionalViewer(c *fiber.Ctx, validator *Validator) (Viewer, bool) {
	if validator == nil {
		return Viewer{}, false
	}
	token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return Viewer{}, false
	}
	viewer, err := validator.Validate(token)
	return viewer, err == nil
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

func setLocals(c *fiber.Ctx, viewer Viewer) {
	c.Locals(LocalUserID, viewer.UserID)
	c.Locals(LocalTenantID, viewer.StoreID)
	c.Locals(LocalRoles, viewer.Roles)
	if viewer.Locale != "" {
		c.Locals(LocalLocale, viewer.Locale)
	}
}

func isPublic(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
