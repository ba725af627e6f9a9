package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/aaravmahajanofficial/pos-terminal/internal/scanner"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils/response"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/go-playground/validator/v10"
)

const defaultMaxImageBytes = 8 << 20

type ScannerHandler struct {
	sessions      service.SessionService
	validator     *validator.Validate
	maxImageBytes int64
}

func NewScannerHandler(sessions service.SessionService, validate *validator.Validate, maxImageBytes int64) *ScannerHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = defaultMaxImageBytes
	}

	return &ScannerHandler{sessions: sessions, validator: validate, maxImageBytes: maxImageBytes}
}

func (h *ScannerHandler) GetState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, _, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, scanner.Describe(session.Scanner.State()))
	}
}

// Capture godoc
//	@Summary		Recognize a captured frame
//	@Description	Uploads the frame for recognition. Unsized matches go straight into the cart and the scanner returns to the camera.
//	@Tags			Scanner
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Session ID"	Format(uuid)
//	@Param			image	formData	file	true	"Captured frame"
//	@Success		200		{object}	scanner.View
//	@Failure		400		{object}	response.ErrorResponse	"Missing or oversized image"
//	@Failure		409		{object}	response.ErrorResponse	"Scanner is not on the camera, or the capture was superseded"
//	@Failure		429		{object}	response.ErrorResponse	"Too many captures for this session"
//	@Security		BearerAuth
//	@Router			/sessions/{id}/scanner/capture [post]
func (h *ScannerHandler) Capture() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes)
		if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
			logger.Warn("Invalid capture upload", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Image upload is missing or too large").WithError(err))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			logger.Warn("Capture without image", slog.String("error", err.Error()))
			response.Error(w, errors.AddValidationError("image", "is required"))
			return
		}
		defer file.Close()

		image := backend.Image{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        file,
		}

		state, err := session.Scanner.Capture(r.Context(), image)
		if err != nil {
			logger.Warn("Capture did not complete", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Capture handled", slog.String("step", string(state.Step())))
		response.Success(w, http.StatusOK, scanner.Describe(state))
	}
}

// Reset serves both retry after a failure prompt and scan-another.
func (h *ScannerHandler) Reset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, _, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, scanner.Describe(session.Scanner.Reset()))
	}
}

func (h *ScannerHandler) SwitchToManual() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, _, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		state, err := session.Scanner.SwitchToManual()
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, scanner.Describe(state))
	}
}

func (h *ScannerHandler) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.SearchQueryRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid search input")
			return
		}

		state, err := session.Scanner.Search(r.Context(), req.Query)
		if err != nil {
			logger.Warn("Search failed", slog.String("query", req.Query), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, scanner.Describe(state))
	}
}

func (h *ScannerHandler) Choose() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.ChooseProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid choose input")
			return
		}

		state, err := session.Scanner.Choose(r.Context(), req.ProductID)
		if err != nil {
			logger.Warn("Choose failed", slog.String("productId", req.ProductID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, scanner.Describe(state))
	}
}

func (h *ScannerHandler) SelectSize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.SelectSizeRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid size input")
			return
		}

		state, err := session.Scanner.SelectSize(req.Size)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, scanner.Describe(state))
	}
}

func (h *ScannerHandler) Confirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		state, err := session.Scanner.Confirm(r.Context())
		if err != nil {
			logger.Warn("Confirm rejected", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Scanned product confirmed")
		response.Success(w, http.StatusOK, scanner.Describe(state))
	}
}
