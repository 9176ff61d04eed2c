package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Brownie44l1/catdog-api/internal/metrics"
	"github.com/Brownie44l1/catdog-api/internal/pipeline"
	"github.com/Brownie44l1/catdog-api/internal/setup"

	"github.com/aidarkhanov/nanoid"
	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func NewTrackMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID, _ := nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 28)
			reqID = "req_" + reqID
			logger := log.With("request_id", reqID)

			cc := &setup.Context{Context: c, Log: logger, Reqid: reqID}
			start := time.Now()
			err := next(cc)
			duration := time.Since(start)
			cc.Log.Infow("end_of_request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status_code", fmt.Sprintf("%d", cc.Response().Status),
				"duration", duration.String(),
			)
			metrics.ResponseCodes.WithLabelValues(cc.Path(), fmt.Sprintf("%d", cc.Response().Status)).Inc()
			return err
		}
	}
}

func NewRecoverMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return emw.RecoverWithConfig(emw.RecoverConfig{
		StackSize: 1 << 10, // 1 KB
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			defer func() {
				_ = log.Sync()
			}()
			log.Errorw("Api Panic", "error", err.Error())
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Erro interno: " + err.Error()})
		},
	})
}

// NewErrorHandler renders errors that escape the handlers, such as an
// oversized body rejected by BodyLimit, in the same envelope the pipeline
// uses: 404 for unknown routes, 500 for everything else.
func NewErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code == http.StatusNotFound {
				err = pipeline.ErrRouteNotFound
			} else {
				err = fmt.Errorf("%v", he.Message)
			}
		}
		log.Warnw("request rejected", "path", c.Request().URL.Path, "error", err)

		resp := pipeline.Envelope(err)
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(resp.StatusCode)
		} else {
			err = c.Blob(resp.StatusCode, echo.MIMEApplicationJSON, []byte(resp.Body))
		}
		if err != nil {
			log.Errorw("failed to write error response", "error", err)
		}
	}
}
