package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/driftchat/backend/internal/common/clock"
	commoncrypto "github.com/driftchat/backend/internal/common/crypto"
	commonhttp "github.com/driftchat/backend/internal/common/http"
	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/snapshot/domain"
	"github.com/driftchat/backend/internal/snapshot/repository"
)

type createReportRequest struct {
	ReportID string          `json:"report_id"`
	Content  json.RawMessage `json:"content"`
}

type createReportResponse struct {
	ID string `json:"id"`
}

type Handler struct {
	store       repository.Store
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	timeout     time.Duration
	log         *logger.Logger
}

func NewHandler(
	store repository.Store,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	timeout time.Duration,
	log *logger.Logger,
) http.Handler {
	h := &Handler{
		store:       store,
		idGenerator: idGenerator,
		clock:       clk,
		timeout:     timeout,
		log:         log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/moderation/reports", h.createReport)
	return mux
}

func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	var req createReportRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("create report failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if req.ReportID == "" || len(req.Content) == 0 {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "report_id and content are required", nil, "")
		return
	}

	id, err := h.idGenerator.NewID()
	if err != nil {
		h.log.Errorf("create report failed: id generation error: %v", err)
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snapshot := domain.Snapshot{
		ID:        id,
		ReportID:  req.ReportID,
		Content:   req.Content,
		CreatedAt: h.clock.Now(),
	}

	if err := h.store.InsertSnapshot(ctx, snapshot); err != nil {
		h.log.Errorf("create report failed: %v", err)
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, createReportResponse{ID: id})
}
