package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/logger"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

// ResolveActor maps the authenticated credential into an explicit tagged
// actor value. Handlers downstream only ever see the actor, never the auth
// row.
func ResolveActor(authKey, actorKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "ResolveActor", trace.WithAttributes(
				attribute.String("authKey", authKey),
				attribute.String("actorKey", actorKey),
			))
			defer span.End()

			auth, ok := c.Get(authKey).(*models.Auth)
			if !ok {
				logger.Logger.WarnContext(ctx, "failed to get auth object")
				span.RecordError(nil)
				span.SetStatus(codes.Error, "failed to get auth object")
				return echo.NewHTTPError(http.StatusUnauthorized, types.StringError("Unauthorized"))
			}

			actor := auth.Actor()
			c.Set(actorKey, actor)

			span.SetAttributes(
				attribute.String("actor.kind", string(actor.Kind)),
				attribute.String("actor.id", actor.ID.String()),
			)

			span.RecordError(nil)
			span.SetStatus(codes.Ok, "resolved actor")
			return next(c)
		}
	}
}

// RequireKind rejects requests whose actor is not one of the allowed kinds.
// Admins always pass.
func RequireKind(actorKey string, kinds ...types.ActorKind) echo.MiddlewareFunc {
	l := logger.Logger.With("actorKey", actorKey, "kinds", kinds)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "RequireKind", trace.WithAttributes(
				attribute.String("actorKey", actorKey),
			))
			defer span.End()

			actor, ok := c.Get(actorKey).(types.Actor)
			if !ok {
				l.WarnContext(ctx, "failed to get actor object")
				span.RecordError(nil)
				span.SetStatus(codes.Error, "failed to get actor object")
				return echo.NewHTTPError(http.StatusUnauthorized, types.StringError("Unauthorized"))
			}

			if actor.IsAdmin() {
				span.RecordError(nil)
				span.SetStatus(codes.Ok, "admin actor")
				return next(c)
			}

			for _, kind := range kinds {
				if actor.Kind == kind {
					span.RecordError(nil)
					span.SetStatus(codes.Ok, "allowed kind")
					return next(c)
				}
			}

			l.DebugContext(ctx, "actor kind not allowed", "kind", actor.Kind)
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "disallowed kind")
			return echo.NewHTTPError(http.StatusForbidden, types.StringError("forbidden"))
		}
	}
}
