package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/fincadocs/internal/config"
	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/fincadocs/internal/observability/metrics"
)

const (
	tenantHeader     = "X-Tenant-ID"
	maxJSONBodyBytes = 1 << 20
)

type Services struct {
	Ingest    ports.DocumentIngestor
	Processor ports.DocumentProcessor
	Documents ports.DocumentReader
	Validator ports.FieldsValidator
}

type Router struct {
	cfg     config.Config
	svc     Services
	metrics *metrics.HTTPServerMetrics
}

// NewRouter accepts nil metrics, which disables /metrics and request instrumentation.
func NewRouter(cfg config.Config, svc Services, httpMetrics *metrics.HTTPServerMetrics) *Router {
	return &Router{cfg: cfg, svc: svc, metrics: httpMetrics}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/documents", rt.uploadDocument)
	api.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	api.HandleFunc("POST /v1/documents/{id}/process", rt.processDocument)
	api.HandleFunc("GET /v1/documents/{id}/fields", rt.getFields)
	api.HandleFunc("GET /v1/documents/{id}/validation", rt.getValidation)
	api.HandleFunc("POST /v1/validate/{type}", rt.validateValues)
	api.HandleFunc("GET /v1/reports/validation.xlsx", rt.validationReport)

	var onReject rejectRecorder
	if rt.metrics != nil {
		onReject = func(reason string) { rt.metrics.RecordRejected(reason) }
	}
	var guarded http.Handler = api
	guarded = backpressureMiddleware(guarded, rt.cfg.APIBackpressureMaxInFlight, rt.cfg.APIBackpressureWait, onReject)
	guarded = rateLimitMiddleware(guarded, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, onReject)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.Handle("/", guarded)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	return requestIDMiddleware(accessLogMiddleware(recoverMiddleware(handler)))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) tenant(r *http.Request) (string, error) {
	tenantID := strings.TrimSpace(r.Header.Get(tenantHeader))
	if tenantID == "" {
		tenantID = rt.cfg.DefaultTenantID
	}
	if tenantID == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve tenant", fmt.Errorf("header %s is required", tenantHeader))
	}
	return tenantID, nil
}

// parseLevel reads ?level= (or the form field of the same name); empty means zero.
func parseLevel(raw string) (domain.ProcessingLevel, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !domain.ProcessingLevel(n).Valid() {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse level", fmt.Errorf("level must be 1-4, got %q", raw))
	}
	return domain.ProcessingLevel(n), nil
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, err := rt.tenant(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rt.cfg.APIMaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.APIMaxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeDomainError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	level, err := parseLevel(r.FormValue("level"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	doc, err := rt.svc.Ingest.Upload(r.Context(), ports.UploadRequest{
		TenantID: tenantID,
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Level:    level,
		Body:     file,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(doc.SizeBytes)
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, err := rt.tenant(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	doc, err := rt.svc.Documents.GetByID(r.Context(), tenantID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type processResponse struct {
	*domain.PipelineResult
	Fields map[string]any `json:"fields,omitempty"`
}

// processDocument runs the pipeline synchronously. Stage failures still answer 200;
// the body carries success=false and the failed steps.
func (rt *Router) processDocument(w http.ResponseWriter, r *http.Request) {
	tenantID, err := rt.tenant(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	level, err := parseLevel(r.URL.Query().Get("level"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if level == 0 {
		level = domain.ProcessingLevel(rt.cfg.DefaultLevel)
	}

	ctx := r.Context()
	if rt.cfg.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.cfg.ProcessTimeout)
		defer cancel()
	}
	result, err := rt.svc.Processor.ProcessByID(ctx, tenantID, r.PathValue("id"), level)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := processResponse{PipelineResult: result}
	if result.Fields != nil {
		resp.Fields = result.Fields.Fields()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) getFields(w http.ResponseWriter, r *http.Request) {
	tenantID, err := rt.tenant(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	record, _, err := rt.svc.Validator.ValidateDocument(r.Context(), tenantID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) getValidation(w http.ResponseWriter, r *http.Request) {
	tenantID, err := rt.tenant(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	record, res, err := rt.svc.Validator.ValidateDocument(r.Context(), tenantID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": record.DocumentID,
		"validation":  res,
	})
}

func (rt *Router) validateValues(w http.ResponseWriter, r *http.Request) {
	docType, err := domain.ParseDocumentType(r.PathValue("type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var values map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}
	res, err := rt.svc.Validator.ValidateValues(docType, values)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) validationReport(w http.ResponseWriter, r *http.Request) {
	tenantID, err := rt.tenant(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var docType domain.DocumentType
	if raw := r.URL.Query().Get("type"); raw != "" {
		if docType, err = domain.ParseDocumentType(raw); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := rt.svc.Validator.ValidationReport(r.Context(), tenantID, docType, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	workbook, err := xlsx.ValidationReport(rows)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="validation.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
