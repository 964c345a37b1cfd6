package handler

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linklite/linklite/internal/app/repository"
	"github.com/linklite/linklite/internal/app/service"
	"github.com/linklite/linklite/internal/http/view"
	infraprom "github.com/linklite/linklite/internal/infra/prometheus"
	"go.uber.org/zap"
)

const healthVersion = "1.0"

// StorePinger reports store connectivity for the health probe.
// *pgxpool.Pool satisfies it.
type StorePinger interface {
	Ping(ctx context.Context) error
}

var _ StorePinger = (*pgxpool.Pool)(nil)

// RedirectDeps groups dependencies required by the redirect handlers.
type RedirectDeps struct {
	Logger   *zap.Logger
	Resolver service.Resolver
	Postgres StorePinger
}

// RedirectHandler implements the redirect read path plus the health probes.
type RedirectHandler struct {
	logger   *zap.Logger
	resolver service.Resolver
	pool     StorePinger
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:   logger,
		resolver: deps.Resolver,
		pool:     deps.Postgres,
	}
}

// Register wires redirect routes onto the provided router. Must be called
// after every other route group: "/:code" matches nearly everything.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Root)
	router.Get("/healthz", h.Healthz)
	router.Get("/:code", h.Resolve)
}

// Root is a simple banner endpoint so we know the service is running.
func (h *RedirectHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "linklite",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Healthz handles GET /healthz. It is a read-only store connectivity probe
// with no coupling to link state.
func (h *RedirectHandler) Healthz(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Intermediaries must never serve a stale health verdict.
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")

	if err := h.pool.Ping(pingCtx); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":        false,
			"version":   healthVersion,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  "disconnected",
			"error":     "health check failed",
		})
	}

	return c.JSON(fiber.Map{
		"ok":          true,
		"version":     healthVersion,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"database":    "connected",
		"environment": os.Getenv("APP_ENV"),
	})
}

// Resolve handles GET /:code, the redirect read path.
func (h *RedirectHandler) Resolve(c *fiber.Ctx) error {
	code := c.Params("code")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	target, err := h.resolver.Resolve(ctx, code, c.IP(), c.Get("User-Agent"))
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			infraprom.RedirectsTotal.WithLabelValues("not_found").Inc()
			return h.renderErrorPage(c, fiber.StatusNotFound)
		}
		h.logger.Error("failed to resolve short link",
			zap.String("code", code), zap.Error(err))
		infraprom.RedirectsTotal.WithLabelValues("error").Inc()
		return h.renderErrorPage(c, fiber.StatusInternalServerError)
	}

	infraprom.RedirectsTotal.WithLabelValues("redirect").Inc()
	return c.Redirect(target, fiber.StatusFound)
}

func (h *RedirectHandler) renderErrorPage(c *fiber.Ctx, status int) error {
	var (
		html string
		err  error
	)
	if status == fiber.StatusNotFound {
		html, err = view.RenderNotFoundPage()
	} else {
		html, err = view.RenderServerErrorPage()
	}
	if err != nil {
		h.logger.Error("failed to render error page", zap.Error(err))
		return c.SendStatus(status)
	}
	return c.Status(status).Type("html", "utf-8").SendString(html)
}
