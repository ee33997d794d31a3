package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	service "github.com/okian/icexg/internal/app"
	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/internal/domain/shot"
)

// Request defaults applied when a field is absent.
const (
	defaultShotType = "WRIST"
	defaultStrength = "5v5"
)

// PredictDependencies scores shots.
type PredictDependencies interface {
	Predict(ctx context.Context, ev shot.Event) (scoring.Assessment, error)
	PredictBatch(ctx context.Context, evs []shot.Event) (service.BatchResult, error)
	MaxBatchSize() int
}

// PredictHandler handles single and batch expected-goals requests.
type PredictHandler struct {
	deps         PredictDependencies
	maxBodyBytes int64
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps PredictDependencies, maxBodyBytes int64) *PredictHandler {
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// flexBool accepts a JSON bool or a number, where any non-zero number is true.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*b = false
	case bool:
		*b = flexBool(t)
	case float64:
		*b = t != 0
	default:
		return fmt.Errorf("expected bool or 0/1, got %s", data)
	}
	return nil
}

// shotRequest mirrors the OpenAPI schema for a shot. x and y are accepted as
// aliases of xCord and yCord.
type shotRequest struct {
	XCord         *float64 `json:"xCord"`
	YCord         *float64 `json:"yCord"`
	X             *float64 `json:"x"`
	Y             *float64 `json:"y"`
	ShotType      string   `json:"shotType"`
	ShotRebound   flexBool `json:"shotRebound"`
	ShotRush      flexBool `json:"shotRush"`
	StrengthState string   `json:"strengthState"`
}

type featuresUsed struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	ShotType      string  `json:"shot_type"`
	IsRebound     bool    `json:"is_rebound"`
	IsRush        bool    `json:"is_rush"`
	StrengthState string  `json:"strength_state"`
}

func coord(primary, alias *float64) float64 {
	switch {
	case primary != nil:
		return *primary
	case alias != nil:
		return *alias
	default:
		return 0
	}
}

// event validates the request and converts it to a shot, returning the
// effective inputs for echoing.
func (req shotRequest) event() (shot.Event, featuresUsed, error) {
	used := featuresUsed{
		X:             coord(req.XCord, req.X),
		Y:             coord(req.YCord, req.Y),
		ShotType:      req.ShotType,
		IsRebound:     bool(req.ShotRebound),
		IsRush:        bool(req.ShotRush),
		StrengthState: req.StrengthState,
	}
	if math.IsNaN(used.X) || math.IsInf(used.X, 0) || math.IsNaN(used.Y) || math.IsInf(used.Y, 0) {
		return shot.Event{}, used, errors.New("coordinates must be finite")
	}
	if used.ShotType == "" {
		used.ShotType = defaultShotType
	}
	if used.StrengthState == "" {
		used.StrengthState = defaultStrength
	}
	ev := shot.New(used.X, used.Y, used.ShotType, used.IsRebound, used.IsRush, used.StrengthState)
	return ev, used, nil
}

type predictionResponse struct {
	ExpectedGoals float64      `json:"expected_goals"`
	ShotQuality   string       `json:"shot_quality"`
	DangerZone    string       `json:"danger_zone"`
	Distance      float64      `json:"distance"`
	Angle         float64      `json:"angle"`
	Zone          string       `json:"zone"`
	Factors       []string     `json:"factors"`
	FeaturesUsed  featuresUsed `json:"features_used"`
}

func newPredictionResponse(a scoring.Assessment, used featuresUsed) predictionResponse {
	factors := a.Factors
	if factors == nil {
		factors = []string{}
	}
	return predictionResponse{
		ExpectedGoals: a.ExpectedGoals,
		ShotQuality:   string(a.Quality),
		DangerZone:    string(a.Danger),
		Distance:      a.Distance,
		Angle:         a.Angle,
		Zone:          string(a.Zone),
		Factors:       factors,
		FeaturesUsed:  used,
	}
}

type batchResponse struct {
	Predictions []predictionResponse `json:"predictions"`
	Count       int                  `json:"count"`
	TotalXG     float64              `json:"total_xg"`
	AverageXG   float64              `json:"average_xg"`
}

// HandlePredict handles POST /predict/expected-goals requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req shotRequest
	if status, err := h.decode(w, r, &req); err != nil {
		writeError(w, status, codeFor(status), WrapKind(op, ErrBadRequest, err))
		return
	}
	ev, used, err := req.event()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	a, err := h.deps.Predict(r.Context(), ev)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newPredictionResponse(a, used))
}

// HandleBatch handles POST /predict/batch requests.
func (h *PredictHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var reqs []shotRequest
	if status, err := h.decode(w, r, &reqs); err != nil {
		writeError(w, status, codeFor(status), WrapKind(op, ErrBadRequest, err))
		return
	}
	if limit := h.deps.MaxBatchSize(); len(reqs) > limit {
		err := fmt.Errorf("%d shots exceeds limit of %d", len(reqs), limit)
		writeError(w, http.StatusBadRequest, "batch_too_large", WrapKind(op, ErrBatchTooLarge, err))
		return
	}

	evs := make([]shot.Event, len(reqs))
	used := make([]featuresUsed, len(reqs))
	for i, req := range reqs {
		ev, u, err := req.event()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("shot %d: %w", i, err)))
			return
		}
		evs[i], used[i] = ev, u
	}

	res, err := h.deps.PredictBatch(r.Context(), evs)
	switch {
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, "batch_too_large", WrapKind(op, ErrBatchTooLarge, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	resp := batchResponse{
		Predictions: make([]predictionResponse, len(res.Assessments)),
		Count:       len(res.Assessments),
		TotalXG:     res.TotalXG,
		AverageXG:   res.AverageXG,
	}
	for i, a := range res.Assessments {
		resp.Predictions[i] = newPredictionResponse(a, used[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a size-limited JSON body into v and returns the status to
// report on failure.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request, v any) (int, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if err := dec.Decode(v); err != nil {
		switch {
		case errors.As(err, &tooLarge):
			return http.StatusRequestEntityTooLarge, err
		case errors.Is(err, io.EOF):
			return http.StatusBadRequest, errors.New("empty body")
		default:
			return http.StatusBadRequest, err
		}
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, errors.New("unexpected data after JSON value")
	}
	return http.StatusOK, nil
}

func codeFor(status int) string {
	if status == http.StatusRequestEntityTooLarge {
		return "payload_too_large"
	}
	return "bad_request"
}
