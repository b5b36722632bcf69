package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	srverr "github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/error"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/lifecycle"
	servermiddleware "github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/middleware"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/models"
	"github.com/disclosurehub/disclosure-api/disclosure-api/cmd/server/internal/ratelimit"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/config"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/logger"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/upload"
)

const name = "github.com/disclosurehub/disclosure-api/disclosure-api/server/routes/v1"

var tracer = otel.Tracer(name)

type Handler struct {
	DB               *gorm.DB
	engine           *lifecycle.Engine
	config           *config.Config
	evidenceUploader upload.Uploader
}

func NewRedisLimiter(
	redisHost string,
	limiterKey string,
	perMinute int64,
	failOpen bool,
	onlyMethod *string,
) middleware.RateLimiterConfig {
	l := logger.Logger
	var store middleware.RateLimiterStore

	redisAddr := redisHost + ":6379"
	l.Debug("Setting up rate limiter with Redis", "redis", redisAddr)
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	rdConf := &ratelimit.RedisLimiterConfig{
		PerMinute:   perMinute,
		RedisClient: rdb,
		LimiterKey:  limiterKey,
		FailOpen:    failOpen,
	}
	store = ratelimit.NewRedisLimitStore(*rdConf)

	skipper := middleware.DefaultSkipper
	if onlyMethod != nil {
		skipper = func(c echo.Context) bool {
			return c.Request().Method != *onlyMethod
		}
	}

	return middleware.RateLimiterConfig{
		Skipper: skipper,
		Store:   store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			auth, ok := c.Get("auth").(*models.Auth)
			if !ok {
				return "", srverr.ErrTypeAssertMismatch
			}
			return auth.ID.String(), nil
		},
		ErrorHandler: func(context echo.Context, _ error) error {
			return context.JSON(http.StatusForbidden, nil)
		},
		DenyHandler: func(context echo.Context, _ string, _ error) error {
			return context.JSON(http.StatusTooManyRequests, nil)
		},
	}
}

func NewHandler(
	db *gorm.DB,
	cfg *config.Config,
	evidenceUploader upload.Uploader,
) Handler {
	return Handler{
		DB:               db,
		engine:           lifecycle.New(db),
		config:           cfg,
		evidenceUploader: evidenceUploader,
	}
}

func (h *Handler) AddRoutes(e *echo.Echo, middlewareHandler *servermiddleware.Handler) {
	l := logger.Logger

	v1Group := e.Group(
		"/v1",
		middleware.BasicAuth(middlewareHandler.BasicAuthValidator),
		servermiddleware.ResolveActor("auth", "actor"),
	)

	if h.config.RateLimit != nil && h.config.RateLimit.GlobalPerMinute > 0 {
		v1Group.Use(
			middleware.RateLimiterWithConfig(
				NewRedisLimiter(
					h.config.RateLimit.RedisHost,
					"global",
					h.config.RateLimit.GlobalPerMinute,
					h.config.RateLimit.FailOpen,
					nil,
				),
			),
		)
	} else {
		l.Warn("not configured to have a global rate limit")
	}

	v1Group.GET("/ping/", h.Ping)

	programGroup := v1Group.Group("/program")
	programGroup.POST(
		"/",
		h.CreateProgram,
		servermiddleware.RequireKind("actor", types.ActorKindOrganization),
	)
	programGroup.GET("/", h.ListPrograms)

	programDetailGroup := programGroup.Group(
		"/:program_id",
		servermiddleware.PopulateFromIDParam[models.Program](
			middlewareHandler,
			"program_id",
			"program",
		),
	)
	programDetailGroup.GET("/", h.GetProgram)
	programDetailGroup.PATCH("/", h.UpdateProgram)
	programDetailGroup.POST("/invite/", h.InviteResearcher)

	submitGroup := programDetailGroup.Group("/submission")

	if h.config.RateLimit != nil && h.config.RateLimit.SubmitPerMinute > 0 {
		post := http.MethodPost

		submitGroup.Use(
			middleware.RateLimiterWithConfig(
				NewRedisLimiter(
					h.config.RateLimit.RedisHost,
					"submit",
					h.config.RateLimit.SubmitPerMinute,
					h.config.RateLimit.FailOpen,
					&post,
				),
			),
		)
	} else {
		l.Warn("not configured to have a submit rate limit")
	}

	submitGroup.POST(
		"/",
		h.CreateSubmission,
		servermiddleware.RequireKind("actor", types.ActorKindResearcher),
	)
	submitGroup.GET("/", h.ListProgramSubmissions)

	submissionGroup := v1Group.Group(
		"/submission/:submission_id",
		servermiddleware.PopulateFromIDParam[models.Submission](
			middlewareHandler,
			"submission_id",
			"submission",
		),
	)
	submissionGroup.GET("/", h.GetSubmission)
	submissionGroup.PATCH("/", h.UpdateSubmission)
	submissionGroup.POST("/message/", h.AddMessage)
	submissionGroup.GET("/message/", h.ListMessages)

	v1Group.GET("/researcher/top/", h.TopResearchers)

	researcherGroup := v1Group.Group(
		"/researcher/me",
		servermiddleware.RequireKind("actor", types.ActorKindResearcher),
	)
	researcherGroup.GET("/", h.Me)
	researcherGroup.GET("/submissions/", h.MySubmissions)

	// RequireKind with no kinds admits admins only
	adminGroup := v1Group.Group("/admin", servermiddleware.RequireKind("actor"))
	adminGroup.GET("/submissions/", h.AdminListSubmissions)
}
