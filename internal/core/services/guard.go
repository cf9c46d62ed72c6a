package services

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/adapters/metrics"
	"github.com/AchilleasB/evaluation-client/internal/clock"
	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const (
	ReasonNotLoggedIn        = "not logged in"
	ReasonSessionExpired     = "session expired"
	ReasonSessionUnavailable = "session unavailable"
)

// Decision is the outcome of an access check. A denied decision carries the
// reason and no session.
type Decision struct {
	Authorized bool
	Session    domain.Session
	Reason     string
}

func authorized(session domain.Session) Decision {
	return Decision{Authorized: true, Session: session}
}

func unauthorized(reason string) Decision {
	return Decision{Reason: reason}
}

// Guard decides whether the current session may enter a protected view.
// It never returns an error: every failure is a denial.
type Guard struct {
	store   ports.SessionStore
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewGuard(store ports.SessionStore, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) *Guard {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{store: store, clock: clk, metrics: m, logger: logger}
}

// RequireRole authorizes the session when it is present, unexpired and its
// role is one of expected. With no expected roles any session passes.
func (g *Guard) RequireRole(ctx context.Context, expected ...domain.Role) Decision {
	session, err := g.store.Get(ctx)
	if err != nil {
		g.logger.Warn("reading session failed", zap.Error(err))
		return unauthorized(ReasonSessionUnavailable)
	}
	if !session.Authenticated() {
		return unauthorized(ReasonNotLoggedIn)
	}

	if g.expired(session.Token) {
		if _, err := g.store.Clear(ctx); err != nil {
			g.logger.Warn("clearing expired session failed", zap.Error(err))
		}
		g.metrics.SessionCleared("expired")
		return unauthorized(ReasonSessionExpired)
	}

	if len(expected) > 0 && !session.HasRole(expected...) {
		return unauthorized(roleDenied(session.Role, expected))
	}
	return authorized(session)
}

// expired inspects the token's exp claim without verifying the signature;
// the server owns verification. Opaque tokens never expire here.
func (g *Guard) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !g.clock.Now().Before(exp.Time)
}

func roleDenied(role domain.Role, expected []domain.Role) string {
	names := make([]string, len(expected))
	for i, r := range expected {
		names[i] = r.String()
	}
	return "role " + role.String() + " may not access this view (requires " + strings.Join(names, " or ") + ")"
}
