package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/username/playfolio/backend/src/config"
	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/security/validation"
	"github.com/username/playfolio/backend/src/services"
	"github.com/username/playfolio/backend/src/utils"
)

type UploadHandler struct {
	historyService services.HistoryService
}

func NewUploadHandler(service services.HistoryService) *UploadHandler {
	return &UploadHandler{
		historyService: service,
	}
}

// HandleUpload accepts a multipart purchase-history file and replaces the
// session's dataset with its contents.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "sessionID", sessionID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "sessionID", sessionID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "sessionID", sessionID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Server-side file content validation failed", "sessionID", sessionID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing upload request", "sessionID", sessionID, "filename", fileHeader.Filename)
	h.processAndRespond(w, file, sessionID, r.FormValue("source"))
}

// HandleImport runs the same pipeline on a raw JSON request body. This is
// the entry point for files fetched elsewhere (e.g. a cloud drive) and
// already decoded by the client.
func (h *UploadHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, config.Cfg.MaxUploadSizeBytes))
	if err != nil {
		logger.L.Warn("Failed to read import body", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Failed to read request body (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing import request", "sessionID", sessionID, "bytes", len(body))
	h.processAndRespond(w, bytes.NewReader(body), sessionID, r.URL.Query().Get("source"))
}

func (h *UploadHandler) processAndRespond(w http.ResponseWriter, file io.Reader, sessionID, source string) {
	result, err := h.historyService.ProcessUpload(file, sessionID, source)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Upload processing failed due to parsing errors", "sessionID", sessionID, "error", err)
			utils.SendJSONError(w, "Failed to parse the file. Please ensure it's a valid Google Play purchase history file.", http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error processing upload", "sessionID", sessionID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for upload result", "sessionID", sessionID, "error", err)
	}
}
