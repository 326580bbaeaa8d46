package ai

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoCodeAlone/workflowgen/catalog"
	"github.com/GoCodeAlone/workflowgen/store"
)

// Handler provides the HTTP API over the generation service, the template
// catalog and the workflow store.
type Handler struct {
	service   *Service
	workflows store.WorkflowStore
	catalog   *catalog.Catalog
	logger    *slog.Logger
}

// NewHandler creates a new API handler. A nil logger uses slog.Default.
func NewHandler(service *Service, workflows store.WorkflowStore, cat *catalog.Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, workflows: workflows, catalog: cat, logger: logger}
}

// RegisterRoutes registers the API routes on a ServeMux. The generate route
// is wrapped in generateMW, outermost first.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, generateMW ...func(http.Handler) http.Handler) {
	var generate http.Handler = http.HandlerFunc(h.HandleGenerate)
	for i := len(generateMW) - 1; i >= 0; i-- {
		generate = generateMW[i](generate)
	}
	mux.Handle("POST /api/workflows/generate", generate)
	mux.HandleFunc("GET /api/workflows", h.HandleListWorkflows)
	mux.HandleFunc("GET /api/workflows/{id}", h.HandleGetWorkflow)
	mux.HandleFunc("GET /api/examples", h.HandleExamples)
	mux.HandleFunc("GET /api/node-types", h.HandleNodeTypes)
	mux.HandleFunc("GET /api/templates", h.HandleTemplates)
}

// HandleGenerate handles POST /api/workflows/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wf, err := h.service.Generate(r.Context(), req)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Error())
		case errors.Is(err, ErrGenerationFailed):
			writeError(w, http.StatusInternalServerError, "Failed to generate workflow")
		default:
			h.logger.Error("generate workflow", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

// decodeGenerateRequest reads one JSON object. Type mismatches are reported
// as validation errors naming the field.
func decodeGenerateRequest(body io.Reader) (GenerateRequest, error) {
	var req GenerateRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return req, &ValidationError{
				Field:   typeErr.Field,
				Message: "expected " + typeErr.Type.String() + ", got " + typeErr.Value,
			}
		}
		return req, &ValidationError{Message: "invalid request body: " + err.Error()}
	}
	return req, nil
}

// HandleListWorkflows handles GET /api/workflows
func (h *Handler) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	records, err := h.workflows.List(r.Context())
	if err != nil {
		h.logger.Error("list workflows", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get workflows")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleGetWorkflow handles GET /api/workflows/{id}
func (h *Handler) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workflow id")
		return
	}
	rec, err := h.workflows.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Workflow not found")
		return
	}
	if err != nil {
		h.logger.Error("get workflow", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get workflow")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleExamples handles GET /api/examples
func (h *Handler) HandleExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Examples())
}

// HandleNodeTypes handles GET /api/node-types
func (h *Handler) HandleNodeTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.NodeTypes())
}

// HandleTemplates handles GET /api/templates
func (h *Handler) HandleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Summaries())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
