package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voxhire/voxhire/server/internal/auth"
	"github.com/voxhire/voxhire/server/internal/relay"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, handler *relay.Handler, authenticator *auth.Authenticator, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: "voxhire-server",
		})
	})

	rt := e.Group("/realtime")

	// Interview WebSocket endpoint with optional JWT validation
	rt.GET("/ws/:candidate_id", func(c echo.Context) error {
		return websocketWithAuth(handler, authenticator, c, logger)
	})

	// Live session inspection
	rt.GET("/session/:id", func(c echo.Context) error {
		return getSession(handler.Registry(), c)
	})
	rt.GET("/live", func(c echo.Context) error {
		return getLiveSessions(handler.Registry(), c)
	})
}

// websocketWithAuth validates the interview token before handing the request
// to the relay. Browsers cannot set headers on WebSocket requests, so the
// token is also accepted as a query parameter.
func websocketWithAuth(handler *relay.Handler, authenticator *auth.Authenticator, c echo.Context, logger *zap.Logger) error {
	if !authenticator.Enabled() {
		return handler.HandleWS(c)
	}

	token := bearerToken(c)
	if token == "" {
		token = c.QueryParam("token")
	}
	if token == "" {
		logger.Warn("interview connection rejected: missing token",
			zap.String("candidate_id", c.Param("candidate_id")))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Interview token is required",
		})
	}

	claims, err := authenticator.ValidateToken(token)
	if err != nil {
		logger.Warn("interview connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired interview token",
		})
	}

	if claims.Role != "candidate" && claims.Role != "admin" {
		logger.Warn("interview connection rejected: invalid role", zap.String("role", claims.Role))
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "invalid_role",
			Message: "Token role is not allowed on the interview endpoint",
		})
	}

	// Candidate tokens are bound to one candidate id.
	if claims.Role == "candidate" && claims.CandidateID != c.Param("candidate_id") {
		logger.Warn("interview connection rejected: candidate mismatch",
			zap.String("token_candidate", claims.CandidateID),
			zap.String("path_candidate", c.Param("candidate_id")))
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "candidate_mismatch",
			Message: "Token was issued for another candidate",
		})
	}

	return handler.HandleWS(c)
}

func getSession(registry *relay.Registry, c echo.Context) error {
	session, ok := registry.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "session_not_found",
			Message: "No live session with this id",
		})
	}
	return c.JSON(http.StatusOK, session.Snapshot())
}

func getLiveSessions(registry *relay.Registry, c echo.Context) error {
	sessions := registry.List()
	return c.JSON(http.StatusOK, LiveSessionsResponse{
		Count:    len(sessions),
		Sessions: sessions,
	})
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
