package http

import (
	"context"
	"net/http"
	"time"

	authdomain "github.com/driftchat/backend/internal/auth/domain"
	commonhttp "github.com/driftchat/backend/internal/common/http"
	"github.com/driftchat/backend/internal/common/jwtverify"
	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/profile/service"
)

type Handler struct {
	profile *service.Service
	errs    *commonhttp.ErrorHandler
	timeout time.Duration
	log     *logger.Logger
}

func NewHandler(profile *service.Service, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{
		profile: profile,
		errs:    commonhttp.NewErrorHandler(log),
		timeout: timeout,
		log:     log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile/username", h.changeUsername)
	return mux
}

func (h *Handler) changeUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, "")
		return
	}

	var req service.ChangeRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("change username failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := authdomain.Session{
		UserID:   claims.UserID,
		Username: claims.Username,
	}

	if err := h.profile.ChangeUsername(ctx, session, req); err != nil {
		h.errs.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
