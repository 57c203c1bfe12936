package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjcero/ClearGDPR/internal/logger"
	"github.com/fjcero/ClearGDPR/internal/model"
)

// ProcessorService defines business operations for the processor registry.
type ProcessorService interface {
	List(ctx context.Context) ([]model.Processor, error)
}

// SubjectLister returns processor-scoped pages of subjects.
type SubjectLister interface {
	ListSubjects(ctx context.Context, processorID string, page int) (model.SubjectPage, error)
}

// Processor handles HTTP endpoints for the processor registry and the
// processor-scoped subject listings.
type Processor struct {
	processorService ProcessorService
	subjectLister    SubjectLister
	logger           *logger.Logger
}

// NewProcessor creates a new Processor handler.
func NewProcessor(processorService ProcessorService, subjectLister SubjectLister, logger *logger.Logger) *Processor {
	return &Processor{
		processorService: processorService,
		subjectLister:    subjectLister,
		logger:           logger,
	}
}

// Register registers the processor routes with the chi router.
func (h *Processor) Register(r chi.Router) {
	r.Get("/processors", h.list)
	r.Get("/processors/{processorID}/subjects", h.listSubjects)
}

type processorPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`
}

type processorListResponse struct {
	Data []processorPayload `json:"data"`
}

type subjectItemPayload struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type pagingPayload struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type subjectPageResponse struct {
	Data   []subjectItemPayload `json:"data"`
	Paging pagingPayload        `json:"paging"`
}

func (h *Processor) list(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Processor handler: processing list processors request")

	processors, err := h.processorService.List(r.Context())
	if err != nil {
		h.logger.Error("Processor handler: list processors failed", "error", err.Error())
		handleError(w, err)
		return
	}

	resp := processorListResponse{Data: make([]processorPayload, 0, len(processors))}
	for _, processor := range processors {
		resp.Data = append(resp.Data, processorPayload{
			ID:          processor.ID,
			Name:        processor.Name,
			LogoURL:     processor.LogoURL,
			Description: processor.Description,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Processor) listSubjects(w http.ResponseWriter, r *http.Request) {
	processorID := chi.URLParam(r, "processorID")
	h.logger.Debug("Processor handler: processing list subjects request", "processor_id", processorID)

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = parsed
	}

	subjectPage, err := h.subjectLister.ListSubjects(r.Context(), processorID, page)
	if err != nil {
		h.logger.Error("Processor handler: list subjects failed",
			"processor_id", processorID,
			"page", page,
			"error", err.Error())
		handleError(w, err)
		return
	}

	resp := subjectPageResponse{
		Data: make([]subjectItemPayload, 0, len(subjectPage.Data)),
		Paging: pagingPayload{
			Current: subjectPage.Paging.Current,
			Total:   subjectPage.Paging.Total,
		},
	}
	for _, item := range subjectPage.Data {
		resp.Data = append(resp.Data, subjectItemPayload{ID: item.ID, CreatedAt: item.CreatedAt})
	}

	writeJSON(w, http.StatusOK, resp)
}
