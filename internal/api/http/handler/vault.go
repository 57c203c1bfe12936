package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjcero/ClearGDPR/internal/logger"
	"github.com/fjcero/ClearGDPR/internal/model"
)

// VaultService defines business operations for subject data management.
type VaultService interface {
	InitializeSubject(ctx context.Context, params model.InitializeSubjectParams) error
	GetSubjectData(ctx context.Context, subjectID string) (json.RawMessage, error)
	EraseDataAndRevokeConsent(ctx context.Context, subjectID string) error
	Restrict(ctx context.Context, subjectID string, restrictions model.Restrictions) error
	GetSubjectRestrictions(ctx context.Context, subjectID string) (model.Restrictions, error)
	Object(ctx context.Context, subjectID string, objection bool) error
	GetSubjectObjection(ctx context.Context, subjectID string) (*bool, error)
	GetErasureHistory(ctx context.Context, subjectID string) ([]model.ErasureEvent, error)
}

// Vault handles HTTP endpoints for subject data, consent and erasure.
type Vault struct {
	vaultService VaultService
	logger       *logger.Logger
}

// NewVault creates a new Vault handler.
func NewVault(vaultService VaultService, logger *logger.Logger) *Vault {
	return &Vault{
		vaultService: vaultService,
		logger:       logger,
	}
}

// Register registers the subject routes with the chi router.
func (h *Vault) Register(r chi.Router) {
	r.Route("/subjects/{subjectID}", func(r chi.Router) {
		r.Post("/data", h.initializeData)
		r.Get("/data", h.getData)
		r.Delete("/", h.erase)
		r.Put("/restrictions", h.updateRestrictions)
		r.Get("/restrictions", h.getRestrictions)
		r.Put("/objection", h.updateObjection)
		r.Get("/objection", h.getObjection)
		r.Get("/erasure-events", h.getErasureHistory)
	})
}

type initializeRequest struct {
	Data       json.RawMessage `json:"data"`
	Processors []string        `json:"processors"`
}

type restrictionsPayload struct {
	DirectMarketing    bool `json:"direct_marketing"`
	EmailCommunication bool `json:"email_communication"`
	Research           bool `json:"research"`
}

type objectionPayload struct {
	Objection *bool `json:"objection"`
}

type erasureEventPayload struct {
	EventID       string     `json:"event_id"`
	SubjectID     string     `json:"subject_id"`
	ErasedAt      time.Time  `json:"erased_at"`
	LedgerReceipt *string    `json:"ledger_receipt"`
	AnchoredAt    *time.Time `json:"anchored_at"`
}

type erasureHistoryResponse struct {
	Data []erasureEventPayload `json:"data"`
}

func (h *Vault) initializeData(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	h.logger.Debug("Vault handler: processing initialize data request", "subject_id", subjectID)

	var req initializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	params := model.InitializeSubjectParams{
		SubjectID:    subjectID,
		PersonalData: req.Data,
		ProcessorIDs: req.Processors,
	}
	if err := h.vaultService.InitializeSubject(r.Context(), params); err != nil {
		h.logger.Error("Vault handler: initialize data failed",
			"subject_id", subjectID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Vault handler: subject data initialized successfully", "subject_id", subjectID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Vault) getData(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	h.logger.Debug("Vault handler: processing get data request", "subject_id", subjectID)

	data, err := h.vaultService.GetSubjectData(r.Context(), subjectID)
	if err != nil {
		h.logger.Error("Vault handler: get data failed",
			"subject_id", subjectID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Vault) erase(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	h.logger.Debug("Vault handler: processing erase request", "subject_id", subjectID)

	if err := h.vaultService.EraseDataAndRevokeConsent(r.Context(), subjectID); err != nil {
		h.logger.Error("Vault handler: erase failed",
			"subject_id", subjectID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Vault handler: subject erased successfully", "subject_id", subjectID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Vault) updateRestrictions(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	h.logger.Debug("Vault handler: processing update restrictions request", "subject_id", subjectID)

	var req restrictionsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	restrictions := model.Restrictions{
		DirectMarketing:    req.DirectMarketing,
		EmailCommunication: req.EmailCommunication,
		Research:           req.Research,
	}
	if err := h.vaultService.Restrict(r.Context(), subjectID, restrictions); err != nil {
		h.logger.Error("Vault handler: update restrictions failed",
			"subject_id", subjectID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Vault handler: restrictions updated successfully", "subject_id", subjectID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Vault) getRestrictions(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	h.logger.Debug("Vault handler: processing get restrictions request", "subject_id", subjectID)

	restrictions, err := h.vaultService.GetSubjectRestrictions(r.Context(), subjectID)
	if err != nil {
		h.logger.Error("Vault handler: get restrictions failed",
			"subject_id", subjectID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, restrictionsPayload{
		DirectMarketing:    restrictions.DirectMarketing,
		EmailCommunication: restrictions.EmailCommunication,
		Research:           restrictions.Research,
	})
}

func (h *Vault) updateObjection(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	h.logger.Debug("Vault handler: processing update objection request", "subject_id", subjectID)

	var req objectionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Objection == nil {
		writeError(w, http.StatusBadRequest, "objection is required")
		return
	}

	if err := h.vaultService.Object(r.Context(), subjectID, *req.Objection); err != nil {
		h.logger.Error("Vault handler: update objection failed",
			"subject_id", subjectID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Vault handler: objection updated successfully",
		"subject_id", subjectID,
		"objection", *req.Objection)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Vault) getObjection(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	h.logger.Debug("Vault handler: processing get objection request", "subject_id", subjectID)

	objection, err := h.vaultService.GetSubjectObjection(r.Context(), subjectID)
	if err != nil {
		h.logger.Error("Vault handler: get objection failed",
			"subject_id", subjectID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, objectionPayload{Objection: objection})
}

func (h *Vault) getErasureHistory(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	h.logger.Debug("Vault handler: processing get erasure history request", "subject_id", subjectID)

	events, err := h.vaultService.GetErasureHistory(r.Context(), subjectID)
	if err != nil {
		h.logger.Error("Vault handler: get erasure history failed",
			"subject_id", subjectID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	resp := erasureHistoryResponse{Data: make([]erasureEventPayload, 0, len(events))}
	for _, event := range events {
		resp.Data = append(resp.Data, erasureEventPayload{
			EventID:       event.ID.String(),
			SubjectID:     event.SubjectID,
			ErasedAt:      event.ErasedAt,
			LedgerReceipt: event.LedgerReceipt,
			AnchoredAt:    event.AnchoredAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
