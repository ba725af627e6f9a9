package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pos-terminal/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils/response"
)

type SessionHandler struct {
	sessions service.SessionService
}

func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// OpenSession godoc
//	@Summary		Start a sale session
//	@Description	Loads the product catalog and creates an empty cart with a scanner in camera mode.
//	@Tags			Sessions
//	@Produce		json
//	@Success		201	{object}	models.SessionResponse
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		502	{object}	response.ErrorResponse	"Catalog could not be loaded"
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *SessionHandler) OpenSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		session, err := h.sessions.Open(r.Context())
		if err != nil {
			logger.Error("Failed to open session", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Session created", slog.String("sessionId", session.ID.String()))
		response.Success(w, http.StatusCreated, models.SessionResponse{ID: session.ID, CreatedAt: session.CreatedAt})
	}
}

func (h *SessionHandler) CloseSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid session id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if err := h.sessions.Close(id); err != nil {
			logger.Warn("Failed to close session", slog.String("sessionId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Session closed", slog.String("sessionId", id.String()))
		response.Success(w, http.StatusOK, map[string]string{"id": id.String()})
	}
}

// loadSession resolves the {id} path value, writing the error response itself on failure.
func loadSession(w http.ResponseWriter, r *http.Request, sessions service.SessionService) (*service.Session, *slog.Logger, bool) {
	logger := middleware.LoggerFromContext(r.Context())

	id, err := utils.ParseID(r, "id")
	if err != nil {
		logger.Warn("Invalid session id", slog.String("error", err.Error()))
		response.Error(w, err)
		return nil, logger, false
	}

	logger = logger.With(slog.String("sessionId", id.String()))

	session, err := sessions.Get(id)
	if err != nil {
		logger.Warn("Session lookup failed", slog.String("error", err.Error()))
		response.Error(w, err)
		return nil, logger, false
	}

	return session, logger, true
}
