package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/debug"
	"github.com/lamim/launch-dash/internal/logging"
	"github.com/lamim/launch-dash/internal/report"
)

const maxImageSide = 4096

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.page))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"records": s.ds.Len(),
		"sites":   len(s.ds.Sites()),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.layout)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	output := chi.URLParam(r, "output")
	fig, status, err := s.invoke(output, r.URL.Query())
	if err != nil {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, fig)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	format := strings.TrimPrefix(path.Ext(file), ".")
	output := strings.TrimSuffix(file, path.Ext(file))
	if format != report.ImagePNG && format != report.ImageSVG {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unsupported image format %q", format)})
		return
	}

	query := r.URL.Query()
	width, err := parseSide(query.Get("width"), report.DefaultImageWidth)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	height, err := parseSide(query.Get("height"), report.DefaultImageHeight)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	fig, status, err := s.invoke(output, query)
	if err != nil {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	var buf bytes.Buffer
	err = report.RenderFigure(&buf, fig, format, width, height)
	if errors.Is(err, report.ErrEmptyFigure) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.opts.Log.Error().Err(err).Str(logging.FieldOutput, output).Msg("render chart failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to render chart"})
		return
	}

	w.Header().Set("Content-Type", report.ContentType(format))
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

// invoke parses filters, runs the callback for output and records the call.
// On failure it returns the HTTP status the error maps to.
func (s *Server) invoke(output string, query url.Values) (report.Figure, int, error) {
	if !s.callbacks.Has(output) {
		s.metrics.observeCallback("other", resultUnknown)
		return nil, http.StatusNotFound, fmt.Errorf("%w: %q", report.ErrUnknownOutput, output)
	}

	f, err := parseFilters(query, s.ds)
	if err != nil {
		s.metrics.observeCallback(output, resultInvalid)
		s.recordCallback(output, f, 0, nil, err)
		return nil, http.StatusBadRequest, err
	}

	start := time.Now()
	fig, err := s.callbacks.Invoke(output, f)
	elapsed := time.Since(start)
	s.recordCallback(output, f, elapsed, fig, err)

	switch {
	case err == nil:
		result := resultOK
		if fig.Empty() {
			result = resultEmpty
		}
		s.metrics.observeCallback(output, result)
		return fig, http.StatusOK, nil
	case errors.Is(err, dataset.ErrInvalidFilter):
		s.metrics.observeCallback(output, resultInvalid)
		return nil, http.StatusBadRequest, err
	case errors.Is(err, report.ErrUnknownOutput):
		s.metrics.observeCallback("other", resultUnknown)
		return nil, http.StatusNotFound, err
	default:
		s.metrics.observeCallback(output, resultError)
		s.opts.Log.Error().Err(err).Str(logging.FieldOutput, output).Msg("callback failed")
		return nil, http.StatusInternalServerError, errors.New("callback failed")
	}
}

func (s *Server) recordCallback(output string, f report.Filters, elapsed time.Duration, fig report.Figure, err error) {
	s.opts.Log.Debug().
		Str(logging.FieldOutput, output).
		Str(logging.FieldSite, f.Site).
		Float64("low", f.Low).
		Float64("high", f.High).
		Dur(logging.FieldDuration, elapsed).
		AnErr("error", err).
		Msg("callback")

	if !s.opts.Debug.IsEnabled() {
		return
	}
	entry := debug.CallbackLog{
		Output:   output,
		Site:     f.Site,
		Low:      f.Low,
		High:     f.High,
		Duration: elapsed,
		Points:   figureSize(fig),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.opts.Debug.LogCallback(entry)
}

// parseFilters reads site, low and high from the query. Missing values default
// to every site and the dataset's payload bounds.
func parseFilters(query url.Values, ds *dataset.Dataset) (report.Filters, error) {
	f := report.DefaultFilters(ds)
	if site := query.Get("site"); site != "" {
		f.Site = site
	}

	var err error
	if f.Low, err = parseBound(query, "low", f.Low); err != nil {
		return f, err
	}
	if f.High, err = parseBound(query, "high", f.High); err != nil {
		return f, err
	}
	if f.Low > f.High {
		return f, fmt.Errorf("%w: low %g is greater than high %g", dataset.ErrInvalidFilter, f.Low, f.High)
	}
	return f, nil
}

func parseBound(query url.Values, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", dataset.ErrInvalidFilter, name, raw)
	}
	return v, nil
}

func parseSide(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > maxImageSide {
		return 0, fmt.Errorf("image size must be between 1 and %d, got %q", maxImageSide, raw)
	}
	return v, nil
}

func figureSize(fig report.Figure) int {
	switch f := fig.(type) {
	case *report.PieFigure:
		if f != nil {
			return f.Total
		}
	case *report.ScatterFigure:
		if f != nil {
			return f.Count
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
