package handlers

import (
	"io"
	"net/http"

	"github.com/Brownie44l1/catdog-api/internal/pipeline"
	"github.com/Brownie44l1/catdog-api/internal/setup"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	pipeline *pipeline.Pipeline
}

func NewHandler(p *pipeline.Pipeline) *Handler {
	return &Handler{
		pipeline: p,
	}
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", ModelLoaded: h.pipeline.Loaded()})
}

// Predict forwards any request to the pipeline, which decides between the
// prediction, 404 and 500 envelopes.
func (h *Handler) Predict(c echo.Context) error {
	var reqID string
	if cc, ok := c.(*setup.Context); ok {
		reqID = cc.Reqid
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeResponse(c, pipeline.Envelope(err))
	}

	resp := h.pipeline.Handle(c.Request().Context(), pipeline.Event{
		Method:    c.Request().Method,
		Path:      c.Request().URL.Path,
		Body:      string(body),
		RequestID: reqID,
	})
	return writeResponse(c, resp)
}

func writeResponse(c echo.Context, resp pipeline.Response) error {
	contentType := echo.MIMEApplicationJSON
	for k, v := range resp.Headers {
		if http.CanonicalHeaderKey(k) == echo.HeaderContentType {
			contentType = v
			continue
		}
		c.Response().Header().Set(k, v)
	}
	return c.Blob(resp.StatusCode, contentType, []byte(resp.Body))
}
