package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/linklite/linklite/internal/app/model"
	"github.com/linklite/linklite/internal/app/repository"
	"github.com/linklite/linklite/internal/app/service"
	infraprom "github.com/linklite/linklite/internal/infra/prometheus"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger      *zap.Logger
	LinkService service.LinkService
	// BaseURL composes the short URL returned on creation.
	BaseURL string
}

// APIHandler implements the link administration endpoints.
type APIHandler struct {
	logger      *zap.Logger
	linkService service.LinkService
	baseURL     string
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:      logger,
		linkService: deps.LinkService,
		baseURL:     deps.BaseURL,
	}
}

// Register wires API routes onto the provided router. Both POST /api/shorten
// and POST /api/links create a link; they share one handler and one code
// policy.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		api.Post("/shorten", h.CreateLink)

		links := api.Group("/links")
		{
			links.Post("/", h.CreateLink)
			links.Get("/", h.ListLinks)
			links.Get("/:code", h.GetLink)
			links.Patch("/:code", h.UpdateLink)
			links.Delete("/:code", h.SoftDeleteLink)
			links.Delete("/:code/permanent", h.HardDeleteLink)
		}
	}
}

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	URL  string `json:"url"`
	Code string `json:"code,omitempty"`
}

// CreateLinkResponse represents the response for creating a link.
type CreateLinkResponse struct {
	Code     string `json:"code"`
	URL      string `json:"url"`
	ShortURL string `json:"shortUrl"`
}

// CreateLink handles POST /api/shorten and POST /api/links.
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL is required",
		})
	}

	link, err := h.linkService.CreateLink(h.requestContext(c), service.CreateLinkInput{
		URL:  req.URL,
		Code: req.Code,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL),
			errors.Is(err, service.ErrInvalidCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrCodeTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "This code is already in use",
			})
		default:
			h.logger.Error("failed to create link", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create link",
			})
		}
	}

	infraprom.LinksCreatedTotal.Inc()
	return c.Status(fiber.StatusCreated).JSON(CreateLinkResponse{
		Code:     link.Code,
		URL:      link.URL,
		ShortURL: fmt.Sprintf("%s/%s", h.baseURL, link.Code),
	})
}

// ListLinks handles GET /api/links. Links come back newest first,
// unpaginated.
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	links, err := h.linkService.ListLinks(h.requestContext(c))
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list links",
		})
	}

	if links == nil {
		links = []model.Link{}
	}
	return c.JSON(links)
}

// GetLink handles GET /api/links/:code.
func (h *APIHandler) GetLink(c *fiber.Ctx) error {
	code := c.Params("code")

	link, err := h.linkService.GetLink(h.requestContext(c), code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Link not found",
			})
		}
		h.logger.Error("failed to get link", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(link)
}

// UpdateLinkRequest represents the request body for updating a link.
type UpdateLinkRequest struct {
	IsActive *bool `json:"isActive"`
}

// UpdateLink handles PATCH /api/links/:code. It only switches redirect
// eligibility; clicks and the target URL are untouched.
func (h *APIHandler) UpdateLink(c *fiber.Ctx) error {
	code := c.Params("code")

	var req UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "isActive is required",
		})
	}

	link, err := h.linkService.SetActive(h.requestContext(c), code, *req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Link not found",
			})
		}
		h.logger.Error("failed to update link", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(link)
}

// SoftDeleteLink handles DELETE /api/links/:code. The record stays queryable
// via GET /api/links/:code and can be reactivated with PATCH.
func (h *APIHandler) SoftDeleteLink(c *fiber.Ctx) error {
	return h.deleteLink(c, model.SoftDelete, "Link deleted successfully")
}

// HardDeleteLink handles DELETE /api/links/:code/permanent.
func (h *APIHandler) HardDeleteLink(c *fiber.Ctx) error {
	return h.deleteLink(c, model.HardDelete, "Link permanently deleted")
}

func (h *APIHandler) deleteLink(c *fiber.Ctx, mode model.DeleteMode, message string) error {
	code := c.Params("code")

	if err := h.linkService.DeleteLink(h.requestContext(c), code, mode); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Link not found",
			})
		}
		h.logger.Error("failed to delete link",
			zap.Error(err), zap.String("code", code), zap.String("mode", mode.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": message,
		"code":    code,
	})
}

func (h *APIHandler) requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
