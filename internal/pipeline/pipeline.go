// Package pipeline implements the request-to-prediction flow: route check,
// lazy model initialization, body parsing, preprocessing, inference and the
// logit-to-label decision.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/catdog-api/internal/metrics"
	"github.com/Brownie44l1/catdog-api/internal/model"
	"github.com/Brownie44l1/catdog-api/internal/preprocess"
	"go.uber.org/zap"
)

// Model is the loaded classifier as seen by the pipeline.
type Model interface {
	ImageSize() model.ImageSize
	Infer(t model.Tensor) ([]float32, error)
}

// Loader builds the Model. It is called on the first request and again on
// later requests for as long as it keeps failing.
type Loader func() (Model, error)

// ModelLoader loads an ONNX model from path.
func ModelLoader(path string, opts model.Options, log *zap.SugaredLogger) Loader {
	return func() (Model, error) {
		h, err := model.Load(path, opts)
		if err != nil {
			return nil, err
		}
		log.Infow("model loaded",
			"path", path,
			"input", h.InputName(),
			"output", h.OutputName(),
			"input_shape", h.InputShape(),
			"image_size", fmt.Sprintf("%dx%d", h.ImageSize().Height, h.ImageSize().Width),
		)
		return h, nil
	}
}

type Pipeline struct {
	load   Loader
	labels model.Labels
	log    *zap.SugaredLogger

	mu     sync.Mutex
	loaded atomic.Bool
	model  Model
}

func New(load Loader, labels model.Labels, log *zap.SugaredLogger) *Pipeline {
	if labels.Cat == "" || labels.Dog == "" {
		labels = model.DefaultLabels
	}
	return &Pipeline{
		load:   load,
		labels: labels,
		log:    log,
	}
}

// Loaded reports whether the model has been initialized.
func (p *Pipeline) Loaded() bool {
	return p.loaded.Load()
}

// Model returns the cached model, loading it if needed. Concurrent first
// callers wait for a single load; a failed load is not cached.
func (p *Pipeline) Model() (Model, error) {
	if p.loaded.Load() {
		return p.model, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded.Load() {
		return p.model, nil
	}

	start := time.Now()
	m, err := p.load()
	if err == nil && m == nil {
		err = errors.New("loader returned no model")
	}
	if err != nil {
		metrics.ModelLoads.WithLabelValues("error").Inc()
		if !errors.Is(err, model.ErrModelLoad) {
			err = fmt.Errorf("%w: %w", model.ErrModelLoad, err)
		}
		p.log.Errorw("failed to initialize model", "error", err)
		return nil, err
	}
	metrics.ModelLoads.WithLabelValues("ok").Inc()
	metrics.ModelLoadDuration.Observe(time.Since(start).Seconds())

	p.model = m
	p.loaded.Store(true)
	return m, nil
}

// Close releases the cached model, if it holds resources, and drops it from
// the cache. A later request loads it again.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded.Load() {
		return
	}
	if c, ok := p.model.(interface{ Close() }); ok {
		c.Close()
	}
	p.loaded.Store(false)
	p.model = nil
}

// Handle runs one request through the pipeline. It never panics; every
// failure is converted into an error envelope.
func (p *Pipeline) Handle(ctx context.Context, ev Event) (resp Response) {
	log := p.log.With("request_id", ev.RequestID)

	defer func() {
		if r := recover(); r != nil {
			err := &Error{Kind: KindInternal, StatusCode: http.StatusInternalServerError, Err: fmt.Errorf("%v", r)}
			log.Errorw("pipeline panic", "error", err.Err)
			resp = Envelope(err)
			metrics.RequestCount.WithLabelValues(strconv.Itoa(resp.StatusCode), string(KindInternal)).Inc()
		}
	}()

	result, err := p.run(ctx, ev)
	if err != nil {
		pe := classify(err)
		if pe.Kind == KindRouteNotFound {
			log.Infow("route not found", "method", ev.Method, "path", ev.Path)
		} else {
			log.Errorw("request failed", "kind", pe.Kind, "error", pe.Err)
		}
		resp = Envelope(pe)
		metrics.RequestCount.WithLabelValues(strconv.Itoa(resp.StatusCode), string(pe.Kind)).Inc()
		return resp
	}

	log.Debugw("prediction",
		"prediction", result.Prediction,
		"confidence", result.Confidence,
		"cat", result.Probabilities.Cat,
		"dog", result.Probabilities.Dog,
	)
	metrics.Predictions.WithLabelValues(result.Prediction).Inc()
	resp = jsonResponse(http.StatusOK, map[string]string{"Content-Type": "application/json"}, result)
	metrics.RequestCount.WithLabelValues(strconv.Itoa(resp.StatusCode), "ok").Inc()
	return resp
}

func (p *Pipeline) run(ctx context.Context, ev Event) (*model.PredictionResult, error) {
	if ev.Method != http.MethodPost || !strings.HasSuffix(ev.Path, "/predict") {
		return nil, fmt.Errorf("%w: %s %s", ErrRouteNotFound, ev.Method, ev.Path)
	}

	m, err := p.Model()
	if err != nil {
		return nil, err
	}

	img, err := parseImage(ev.Body)
	if err != nil {
		return nil, err
	}

	tensor, err := preprocess.Prepare(img, m.ImageSize())
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	logits, err := m.Infer(tensor)
	metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, model.ErrInference) {
			err = fmt.Errorf("%w: %w", model.ErrInference, err)
		}
		return nil, err
	}

	return model.Decide(logits, p.labels)
}
