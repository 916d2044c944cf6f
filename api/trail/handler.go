// Package trail exposes the track, the current estimate and the prediction
// log over HTTP.
package trail

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/trailcast/core/logger"
	"github.com/kilianp07/trailcast/core/model"
	"github.com/kilianp07/trailcast/core/predlog"
	"github.com/kilianp07/trailcast/core/prediction"
	"github.com/kilianp07/trailcast/core/tracker"
	"github.com/kilianp07/trailcast/geojson"
	"github.com/kilianp07/trailcast/ingest"
	"github.com/kilianp07/trailcast/pkg/export"
)

// SourceHTTP labels observations and estimates coming from the API.
const SourceHTTP = "http"

const maxBodyBytes = 10 << 20

// Handler serves the trail API.
type Handler struct {
	tracker  *tracker.Tracker
	engine   prediction.Engine
	segments int
	token    string
	log      logger.Logger
}

// NewHandler creates the API handler. engine serves stateless predictions
// on POST /api/predict; segments is the default ring vertex count. Requests
// must include an Authorization header with "Bearer <token>" when token is
// non-empty.
func NewHandler(tr *tracker.Tracker, engine prediction.Engine, segments int, token string, log logger.Logger) *Handler {
	if segments <= 0 {
		segments = prediction.DefaultSegments
	}
	return &Handler{tracker: tr, engine: engine, segments: segments, token: token, log: log}
}

// Routes returns the chi router with every endpoint mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/observations", h.handlePostObservations)
		r.Post("/observations/csv", h.handlePostCSV)
		r.Get("/observations", h.handleGetObservations)
		r.Get("/prediction", h.handleGetPrediction)
		r.Get("/prediction/geojson", h.handleGetGeoJSON)
		r.Post("/predict", h.handlePredict)
		r.Get("/predictions", h.handleGetPredictions)
	})
	return r
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+h.token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "track_len": h.tracker.Store().Len()})
}

type ingestResponse struct {
	Accepted int `json:"accepted"`
	TrackLen int `json:"track_len"`
}

func (h *Handler) handlePostObservations(w http.ResponseWriter, r *http.Request) {
	obs, err := ingest.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.ingest(w, r, obs)
}

func (h *Handler) handlePostCSV(w http.ResponseWriter, r *http.Request) {
	obs, err := ingest.ReadCSV(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.ingest(w, r, obs)
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request, obs []model.Observation) {
	n, err := h.tracker.Ingest(r.Context(), SourceHTTP, obs)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ingest.ErrInvalidObservation) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusCreated, ingestResponse{Accepted: n, TrackLen: h.tracker.Store().Len()})
}

func (h *Handler) handleGetObservations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Store().Snapshot())
}

func (h *Handler) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	res, err := h.tracker.Current(r.Context(), SourceHTTP)
	if err != nil {
		// Output failures are logged by the tracker; the estimate is still valid.
		h.log.Warnf("prediction %s: %v", res.ID, err)
	}
	if !res.Predicted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGetGeoJSON(w http.ResponseWriter, r *http.Request) {
	segments, err := h.segmentsParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.tracker.Current(r.Context(), SourceHTTP)
	if err != nil {
		h.log.Warnf("prediction %s: %v", res.ID, err)
	}
	fc, err := geojson.View(h.tracker.Store().Snapshot(), res.Prediction, segments)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		h.log.Errorf("encode geojson: %v", err)
	}
}

type predictResponse struct {
	TrackLen   int              `json:"track_len"`
	Prediction model.Prediction `json:"prediction"`
	Boundary   [][2]float64     `json:"boundary,omitempty"`
}

// handlePredict estimates from the posted sequence without touching the
// track. CSV bodies are accepted with a text/csv content type.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var (
		obs []model.Observation
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		obs, err = ingest.ReadCSV(body)
	} else {
		obs, err = ingest.DecodeJSON(body)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pred, ok := h.engine.EstimateNext(obs)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	resp := predictResponse{TrackLen: len(obs), Prediction: pred}
	if r.URL.Query().Has("segments") {
		segments, err := h.segmentsParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ring, err := prediction.CircleBoundary(pred.Point(), pred.RadiusM, segments)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, p := range ring {
			resp.Boundary = append(resp.Boundary, [2]float64{p.Lon, p.Lat})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPredictions(w http.ResponseWriter, r *http.Request) {
	q := predlog.Query{Source: r.URL.Query().Get("source")}
	var err error
	if q.Start, err = timeParam(r, "start"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if q.End, err = timeParam(r, "end"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if v := r.URL.Query().Get("predicted"); v != "" {
		if q.PredictedOnly, err = strconv.ParseBool(v); err != nil {
			http.Error(w, fmt.Sprintf("predicted: %v", err), http.StatusBadRequest)
			return
		}
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != export.FormatJSON && format != export.FormatCSV {
		http.Error(w, fmt.Sprintf("format: want json or csv, got %q", format), http.StatusBadRequest)
		return
	}
	records, err := h.tracker.History(r.Context(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if format == export.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	if err := export.Write(w, format, records); err != nil {
		h.log.Errorf("export predictions: %v", err)
	}
}

func (h *Handler) segmentsParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("segments")
	if s == "" {
		return h.segments, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("segments: want a positive integer, got %q", s)
	}
	return n, nil
}

func timeParam(r *http.Request, name string) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
