// Package server serves the prediction form, its JSON API and the embedded
// assets for the local web UI.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iwvelando/instax-forecast/internal/inference"
	"github.com/iwvelando/instax-forecast/internal/report"
	"github.com/iwvelando/instax-forecast/pkg/constants"
	"github.com/iwvelando/instax-forecast/pkg/datetime"
	"github.com/iwvelando/instax-forecast/pkg/format"
)

//go:embed static/* templates/*
var assets embed.FS

// Predictor is the part of the inference pipeline the handlers use.
type Predictor interface {
	Predict(discount float64, month int) (inference.Result, error)
	Info() inference.ModelInfo
	MaxDiscount() float64
}

// Options tunes the handler. Zero values select defaults.
type Options struct {
	MaxRequestSize int64
	Version        string
	Locale         string
	Registry       *prometheus.Registry
	Now            func() time.Time
}

type handler struct {
	logger         *zap.Logger
	predictor      Predictor
	maxRequestSize int64
	version        string
	printer        *format.Printer
	page           *template.Template
	metrics        *metrics
	now            func() time.Time
}

// NewHandler constructs the HTTP handler that serves the web UI and prediction API.
func NewHandler(logger *zap.Logger, predictor Predictor, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxRequestSize := opts.MaxRequestSize
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	h := &handler{
		logger:         logger,
		predictor:      predictor,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
		printer:        format.NewPrinter(opts.Locale),
		page:           template.Must(template.ParseFS(assets, "templates/index.html")),
		metrics:        newMetrics(opts.Registry),
		now:            now,
	}

	mux := http.NewServeMux()

	// Prediction form
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/predict", h.handlePredictForm)

	// JSON API
	mux.HandleFunc("/api/predict", h.handlePredictAPI)
	mux.HandleFunc("/api/model", h.handleModel)
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.Handle("/metrics", h.metrics.handler)

	// Static assets (stylesheet)
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	return withRequestID(h.logRequests(mux))
}

type monthOption struct {
	Value    int
	Name     string
	Selected bool
}

type pageData struct {
	Version     string
	Discount    string
	Month       int
	Months      []monthOption
	MaxDiscount string
	Step        string
	Model       report.ModelPanel
	Report      *report.Report
	Error       string
	Footer      []string
	RequestID   string
}

func (h *handler) newPage(r *http.Request, discount string, month int) pageData {
	maxDiscount := ""
	if limit := h.predictor.MaxDiscount(); limit > 0 {
		maxDiscount = strconv.FormatFloat(limit, 'f', -1, 64)
	}

	months := make([]monthOption, 0, constants.MaxMonth)
	for m := constants.MinMonth; m <= constants.MaxMonth; m++ {
		months = append(months, monthOption{Value: m, Name: datetime.MonthName(m), Selected: m == month})
	}

	return pageData{
		Version:     h.version,
		Discount:    discount,
		Month:       month,
		Months:      months,
		MaxDiscount: maxDiscount,
		Step:        strconv.FormatFloat(constants.DiscountStep, 'f', -1, 64),
		Model:       report.DescribeModel(h.predictor.Info()),
		Footer:      report.Footer(),
		RequestID:   requestIDFrom(r.Context()),
	}
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	// The month always defaults to the current calendar month at render time.
	h.renderPage(w, http.StatusOK, h.newPage(r, "0", datetime.CurrentMonth(h.now())))
}

func (h *handler) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
		}
		h.metrics.observe("form", outcomeInvalid, time.Since(start))
		page := h.newPage(r, "0", datetime.CurrentMonth(h.now()))
		page.Error = "failed to read form"
		h.renderPage(w, status, page)
		return
	}

	discountText := strings.TrimSpace(r.PostFormValue("discount"))
	monthText := strings.TrimSpace(r.PostFormValue("month"))

	month, monthErr := datetime.ParseMonth(monthText)
	if monthErr != nil {
		month = datetime.CurrentMonth(h.now())
	}
	page := h.newPage(r, discountText, month)

	discount, err := parseDiscount(discountText)
	if err == nil && monthErr != nil {
		err = fmt.Errorf("%w: %v", inference.ErrInvalidInput, monthErr)
	}
	if err != nil {
		h.metrics.observe("form", outcomeInvalid, time.Since(start))
		page.Error = err.Error()
		h.renderPage(w, http.StatusBadRequest, page)
		return
	}

	result, err := h.predictor.Predict(discount, month)
	if err != nil {
		status, msg := h.mapError(r, err, "server.handlePredictForm")
		h.metrics.observe("form", outcomeFor(status), time.Since(start))
		page.Error = msg
		h.renderPage(w, status, page)
		return
	}
	h.metrics.observe("form", outcomeOK, time.Since(start))

	rep := report.Build(h.printer, result)
	page.Report = &rep
	h.renderPage(w, http.StatusOK, page)
}

type predictRequest struct {
	Discount *float64 `json:"discount"`
	Month    *int     `json:"month"`
}

type predictResponse struct {
	Result inference.Result `json:"result"`
	Report report.Report    `json:"report"`
}

func (h *handler) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.observe("api", outcomeInvalid, time.Since(start))
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), "server.handlePredictAPI")
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), "server.handlePredictAPI")
		return
	}
	if req.Discount == nil || req.Month == nil {
		h.metrics.observe("api", outcomeInvalid, time.Since(start))
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "discount and month are required", "server.handlePredictAPI")
		return
	}

	result, err := h.predictor.Predict(*req.Discount, *req.Month)
	if err != nil {
		status, msg := h.mapError(r, err, "server.handlePredictAPI")
		h.metrics.observe("api", outcomeFor(status), time.Since(start))
		h.writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	h.metrics.observe("api", outcomeOK, time.Since(start))

	h.writeJSON(w, http.StatusOK, predictResponse{
		Result: result,
		Report: report.Build(h.printer, result),
	})
}

type modelResponse struct {
	Panel       report.ModelPanel   `json:"panel"`
	Info        inference.ModelInfo `json:"info"`
	MaxDiscount float64             `json:"maxDiscount"`
	Step        float64             `json:"step"`
}

func (h *handler) handleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	info := h.predictor.Info()
	h.writeJSON(w, http.StatusOK, modelResponse{
		Panel:       report.DescribeModel(info),
		Info:        info,
		MaxDiscount: h.predictor.MaxDiscount(),
		Step:        constants.DiscountStep,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// parseDiscount reads the discount form field. An empty field is zero.
func parseDiscount(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	discount, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil || math.IsNaN(discount) || math.IsInf(discount, 0) {
		return 0, fmt.Errorf("%w: discount must be a number, got %q", inference.ErrInvalidInput, value)
	}
	return discount, nil
}

// mapError converts a pipeline error into a status code and a message that is
// safe to show. Anything other than invalid input is logged and hidden.
func (h *handler) mapError(r *http.Request, err error, op string) (int, string) {
	if inference.IsUserError(err) {
		return http.StatusBadRequest, err.Error()
	}

	h.logger.Error("prediction failed",
		zap.String("op", op),
		zap.String("requestID", requestIDFrom(r.Context())),
		zap.Error(err),
	)
	return http.StatusInternalServerError, "prediction failed"
}

func outcomeFor(status int) string {
	if status == http.StatusBadRequest {
		return outcomeInvalid
	}
	return outcomeFailed
}

func (h *handler) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.page.Execute(w, data); err != nil {
		h.logger.Error("failed to render page",
			zap.String("op", "server.renderPage"),
			zap.String("requestID", data.RequestID),
			zap.Error(err),
		)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Warn("prediction request rejected",
		zap.String("op", op),
		zap.String("requestID", requestIDFrom(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
