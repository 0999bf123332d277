package http

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/app"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
)

const maxRequesterIDBytes = 256

type TemplateHandler struct {
	service *app.TemplateService
	baseURL string
}

// NewTemplateHandler builds Location headers from baseURL. An empty baseURL
// falls back to the scheme and host of each request.
func NewTemplateHandler(service *app.TemplateService, baseURL string) *TemplateHandler {
	return &TemplateHandler{service: service, baseURL: strings.TrimRight(baseURL, "/")}
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req Identified[TemplateRequest]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	tmpl, err := req.Value.ToTemplate()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	outcome, err := h.service.Create(c.Request.Context(), tmpl, req.RequesterID)
	switch outcome {
	case domain.OutcomeCreated:
		c.Header("Location", h.location(c, tmpl.Name))
		c.Status(http.StatusCreated)
	case domain.OutcomeDuplicated:
		c.JSON(http.StatusConflict, ErrorResponse{Error: domain.ErrDuplicateTemplateName.Error()})
	default:
		h.fail(c, outcome, err)
	}
}

func (h *TemplateHandler) Replace(c *gin.Context) {
	var req Identified[TemplateRequest]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	tmpl, err := req.Value.ToTemplate()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	outcome, err := h.service.Replace(c.Request.Context(), tmpl, req.RequesterID, req.Value.PreviousName)
	switch outcome {
	case domain.OutcomeReplaced:
		c.Header("Location", h.location(c, tmpl.Name))
		c.Status(http.StatusNoContent)
	case domain.OutcomeNotModified:
		c.Header("Location", h.location(c, tmpl.Name))
		c.Status(http.StatusNotModified)
	case domain.OutcomeNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrTemplateNotFound.Error()})
	case domain.OutcomeDuplicated:
		c.JSON(http.StatusConflict, ErrorResponse{Error: domain.ErrDuplicateTemplateName.Error()})
	default:
		h.fail(c, outcome, err)
	}
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tmpl, found, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, domain.OutcomeError, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrTemplateNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, NewTemplateResponse(tmpl))
}

func (h *TemplateHandler) List(c *gin.Context) {
	names, err := h.service.Names(c.Request.Context())
	if err != nil {
		h.fail(c, domain.OutcomeError, err)
		return
	}
	c.JSON(http.StatusOK, names)
}

// Delete reads the requester id from the plain text body.
func (h *TemplateHandler) Delete(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequesterIDBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable request body"})
		return
	}

	outcome, err := h.service.Delete(c.Request.Context(), c.Param("name"), strings.TrimSpace(string(body)))
	switch outcome {
	case domain.OutcomeDeleted:
		c.Status(http.StatusNoContent)
	case domain.OutcomeNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrTemplateNotFound.Error()})
	default:
		h.fail(c, outcome, err)
	}
}

func (h *TemplateHandler) fail(c *gin.Context, outcome domain.Outcome, err error) {
	if outcome == domain.OutcomeInvalid {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err == nil {
		err = errors.New("unexpected outcome " + outcome.String())
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func (h *TemplateHandler) location(c *gin.Context, name string) string {
	return baseURL(c, h.baseURL) + "/template/" + url.PathEscape(name)
}

func baseURL(c *gin.Context, configured string) string {
	if configured != "" {
		return configured
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
