package server

import (
	"errors"
	"net/http"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/documents"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/query"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createDocumentRequest struct {
	DocumentID string         `json:"documentId"`
	Data       map[string]any `json:"data"`
}

type updateDocumentRequest struct {
	Data map[string]any `json:"data"`
}

type documentPayload struct {
	ID           string         `json:"$id"`
	DatabaseID   string         `json:"$databaseId"`
	CollectionID string         `json:"$collectionId"`
	CreatedAt    string         `json:"$createdAt"`
	UpdatedAt    string         `json:"$updatedAt"`
	Data         map[string]any `json:"data"`
}

type documentListPayload struct {
	Total     int               `json:"total"`
	Documents []documentPayload `json:"documents"`
}

func newDocumentPayload(document documents.Document) (documentPayload, error) {
	data, err := document.Data()
	if err != nil {
		return documentPayload{}, err
	}
	return documentPayload{
		ID:           document.DocumentID,
		DatabaseID:   document.DatabaseID,
		CollectionID: document.CollectionID,
		CreatedAt:    formatMillis(document.CreatedAtMillis),
		UpdatedAt:    formatMillis(document.UpdatedAtMillis),
		Data:         data,
	}, nil
}

func (h *httpHandler) requestScope(c *gin.Context) (documents.Scope, bool) {
	scope, err := documents.NewScope(c.Param("databaseId"), c.Param("collectionId"), c.GetString(userIDContextKey))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_scope", "database and collection ids are required")
		return documents.Scope{}, false
	}
	return scope, true
}

func (h *httpHandler) handleListDocuments(c *gin.Context) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}

	filters, err := query.ParseAll(c.QueryArray("queries[]"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	records, err := h.documents.List(c.Request.Context(), scope, filters)
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}

	payload := documentListPayload{Documents: make([]documentPayload, 0, len(records))}
	for _, record := range records {
		document, err := newDocumentPayload(record)
		if err != nil {
			h.logger.Warn("skipping undecodable document", zap.String("document_id", record.DocumentID), zap.Error(err))
			continue
		}
		payload.Documents = append(payload.Documents, document)
	}
	payload.Total = len(payload.Documents)
	c.JSON(http.StatusOK, payload)
}

func (h *httpHandler) handleCreateDocument(c *gin.Context) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}

	var request createDocumentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if request.Data == nil {
		respondError(c, http.StatusBadRequest, "invalid_document", "document data is required")
		return
	}

	record, err := h.documents.Create(c.Request.Context(), scope, request.DocumentID, request.Data)
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}
	h.respondDocument(c, http.StatusCreated, record)
}

func (h *httpHandler) handleUpdateDocument(c *gin.Context) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}

	var request updateDocumentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if request.Data == nil {
		respondError(c, http.StatusBadRequest, "invalid_document", "document data is required")
		return
	}

	record, err := h.documents.Update(c.Request.Context(), scope, c.Param("documentId"), request.Data)
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}
	h.respondDocument(c, http.StatusOK, record)
}

func (h *httpHandler) handleDeleteDocument(c *gin.Context) {
	scope, ok := h.requestScope(c)
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), scope, c.Param("documentId")); err != nil {
		h.respondDocumentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) respondDocument(c *gin.Context, status int, record documents.Document) {
	payload, err := newDocumentPayload(record)
	if err != nil {
		h.logger.Error("document encode failed", zap.String("document_id", record.DocumentID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "document_encode_failed", "failed to encode document")
		return
	}
	c.JSON(status, payload)
}

func (h *httpHandler) respondDocumentError(c *gin.Context, err error) {
	code := "document_request_failed"
	var serviceErr *documents.ServiceError
	if errors.As(err, &serviceErr) {
		code = serviceErr.Code()
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, documents.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, documents.ErrDocumentExists):
		status = http.StatusConflict
	case errors.Is(err, documents.ErrInvalidIdentifier),
		errors.Is(err, documents.ErrInvalidData),
		errors.Is(err, documents.ErrInvalidFilter):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("document request failed",
			zap.String("user_id", c.GetString(userIDContextKey)),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": code, "message": err.Error()})
}
