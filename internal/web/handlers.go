package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	imgio "github.com/ironsheep/image-tagger/internal/imaging"
	"github.com/ironsheep/image-tagger/internal/library"
	"github.com/ironsheep/image-tagger/internal/redact"
)

// errBadBody marks request bodies that could not be decoded.
var errBadBody = errors.New("invalid request body")

type handlers struct {
	lib *library.Library
}

// statusFor maps library and engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadBody),
		errors.Is(err, library.ErrInvalidName),
		errors.Is(err, imgio.ErrUnsupportedFormat),
		errors.Is(err, redact.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, redact.ErrImageNotFound),
		errors.Is(err, redact.ErrNoBackup):
		return http.StatusNotFound
	case errors.Is(err, redact.ErrDecode):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) serveImage(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	path, err := h.lib.Path(name)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.File(path)
}

func (h *handlers) listImages(c *gin.Context) {
	entries, err := h.lib.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": entries})
}

func (h *handlers) info(c *gin.Context) {
	info, err := h.lib.Info(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) getTags(c *gin.Context) {
	name := c.Param("name")
	tags, err := h.lib.Tags(c.Request.Context(), name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "tags": tags})
}

func (h *handlers) putTags(c *gin.Context) {
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, fmt.Errorf("%w: %w", errBadBody, err))
		return
	}

	name := c.Param("name")
	ctx := c.Request.Context()
	if err := h.lib.SetTags(ctx, name, body.Tags); err != nil {
		fail(c, err)
		return
	}
	h.getTags(c)
}

func (h *handlers) getRegions(c *gin.Context) {
	name := c.Param("name")
	regions, err := h.lib.Regions(c.Request.Context(), name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "regions": regions})
}

func (h *handlers) putRegions(c *gin.Context) {
	regions, err := bindRegions(c)
	if err != nil {
		fail(c, err)
		return
	}
	if regions == nil {
		regions = []redact.Request{}
	}

	if err := h.lib.SetRegions(c.Request.Context(), c.Param("name"), regions); err != nil {
		fail(c, err)
		return
	}
	h.getRegions(c)
}

func (h *handlers) redact(c *gin.Context) {
	regions, err := bindRegions(c)
	if err != nil {
		fail(c, err)
		return
	}

	res, err := h.lib.Redact(c.Request.Context(), c.Param("name"), regions)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) restore(c *gin.Context) {
	name := c.Param("name")
	if err := h.lib.Restore(c.Request.Context(), name); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "restored": true})
}

func (h *handlers) preview(c *gin.Context) {
	var body struct {
		redact.Request
		Scale float64 `json:"scale"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, fmt.Errorf("%w: %w", errBadBody, err))
		return
	}

	res, err := h.lib.Preview(c.Request.Context(), c.Param("name"), body.Request, body.Scale)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) suggestions(c *gin.Context) {
	name := c.Param("name")
	reqs, err := h.lib.Suggest(c.Request.Context(), name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "suggestions": reqs})
}

// bindRegions reads a batch of requests. The body may be a bare JSON array
// or an object with a "regions" array. An empty body, or an object without
// "regions", yields nil.
func bindRegions(c *gin.Context) ([]redact.Request, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadBody, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var reqs []redact.Request
		if err := json.Unmarshal(raw, &reqs); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadBody, err)
		}
		return reqs, nil
	}

	var body struct {
		Regions []redact.Request `json:"regions"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadBody, err)
	}
	return body.Regions, nil
}
