package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/query"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// UniqueIDPlaceholder asks the service to generate the document id.
const UniqueIDPlaceholder = "unique()"

const (
	opServiceNew = "documents.service.new"
	opList       = "documents.list"
	opCreate     = "documents.create"
	opUpdate     = "documents.update"
	opDelete     = "documents.delete"

	reasonMissingDatabase = "missing_database"
	reasonInvalidScope    = "invalid_scope"
	reasonInvalidFilter   = "invalid_filter"
	reasonInvalidData     = "invalid_data"
	reasonInvalidID       = "invalid_document_id"
	reasonIDGeneration    = "id_generation_failed"
	reasonDocumentExists  = "document_exists"
	reasonNotFound        = "document_not_found"
	reasonQueryFailed     = "query_failed"
	reasonInsertFailed    = "insert_failed"
	reasonSaveFailed      = "save_failed"
	reasonDeleteFailed    = "delete_failed"

	fieldDatabaseID   = "database_id"
	fieldCollectionID = "collection_id"
	fieldDocumentID   = "document_id"
	fieldOwnerID      = "owner_id"

	queryScope         = fieldDatabaseID + " = ? AND " + fieldCollectionID + " = ? AND " + fieldOwnerID + " = ?"
	queryScopeDocument = queryScope + " AND " + fieldDocumentID + " = ?"
	queryKey           = fieldDatabaseID + " = ? AND " + fieldCollectionID + " = ? AND " + fieldDocumentID + " = ?"
	orderCreation      = "created_at_ms ASC, rowid ASC"
)

// ServiceError carries a stable operation.reason code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

type IDProvider interface {
	NewID() (string, error)
}

// Service stores JSON documents grouped by database and collection.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, reasonMissingDatabase, errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// List returns the owner's documents matching every filter, in creation order.
func (s *Service) List(ctx context.Context, scope Scope, filters []query.Query) ([]Document, error) {
	if s.db == nil {
		s.logError(opList, reasonMissingDatabase, errMissingDatabase)
		return nil, newServiceError(opList, reasonMissingDatabase, errMissingDatabase)
	}
	scope, err := NewScope(scope.DatabaseID, scope.CollectionID, scope.OwnerID)
	if err != nil {
		return nil, newServiceError(opList, reasonInvalidScope, err)
	}

	statement := s.db.WithContext(ctx).Where(queryScope, scope.DatabaseID, scope.CollectionID, scope.OwnerID)
	for _, filter := range filters {
		statement, err = applyFilter(statement, filter)
		if err != nil {
			return nil, newServiceError(opList, reasonInvalidFilter, err)
		}
	}

	var documents []Document
	if err := statement.Order(orderCreation).Find(&documents).Error; err != nil {
		s.logError(opList, reasonQueryFailed, err, scopeFields(scope)...)
		return nil, newServiceError(opList, reasonQueryFailed, err)
	}
	return documents, nil
}

// Create stores a new document. An empty or placeholder id is replaced by a generated one.
func (s *Service) Create(ctx context.Context, scope Scope, documentID string, data map[string]any) (Document, error) {
	if s.db == nil {
		s.logError(opCreate, reasonMissingDatabase, errMissingDatabase)
		return Document{}, newServiceError(opCreate, reasonMissingDatabase, errMissingDatabase)
	}
	scope, err := NewScope(scope.DatabaseID, scope.CollectionID, scope.OwnerID)
	if err != nil {
		return Document{}, newServiceError(opCreate, reasonInvalidScope, err)
	}
	payload, err := encodeData(data)
	if err != nil {
		return Document{}, newServiceError(opCreate, reasonInvalidData, err)
	}

	documentID = strings.TrimSpace(documentID)
	if documentID == "" || documentID == UniqueIDPlaceholder {
		generated, idErr := s.idProvider.NewID()
		if idErr != nil {
			s.logError(opCreate, reasonIDGeneration, idErr, scopeFields(scope)...)
			return Document{}, newServiceError(opCreate, reasonIDGeneration, idErr)
		}
		documentID = generated
	}
	documentID, err = newIdentifier("document id", documentID)
	if err != nil {
		return Document{}, newServiceError(opCreate, reasonInvalidID, err)
	}

	nowMillis := s.clock().UTC().UnixMilli()
	document := Document{
		DatabaseID:      scope.DatabaseID,
		CollectionID:    scope.CollectionID,
		DocumentID:      documentID,
		OwnerID:         scope.OwnerID,
		DataJSON:        payload,
		CreatedAtMillis: nowMillis,
		UpdatedAtMillis: nowMillis,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Document
		lookupErr := tx.Where(queryKey, scope.DatabaseID, scope.CollectionID, documentID).Take(&existing).Error
		if lookupErr == nil {
			return newServiceError(opCreate, reasonDocumentExists, ErrDocumentExists)
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			s.logError(opCreate, reasonQueryFailed, lookupErr, append(scopeFields(scope), zap.String(fieldDocumentID, documentID))...)
			return newServiceError(opCreate, reasonQueryFailed, lookupErr)
		}
		if err := tx.Create(&document).Error; err != nil {
			s.logError(opCreate, reasonInsertFailed, err, append(scopeFields(scope), zap.String(fieldDocumentID, documentID))...)
			return newServiceError(opCreate, reasonInsertFailed, err)
		}
		return nil
	})
	if txErr != nil {
		return Document{}, txErr
	}
	return document, nil
}

// Update merges data into the stored payload. Keys absent from data are kept.
func (s *Service) Update(ctx context.Context, scope Scope, documentID string, data map[string]any) (Document, error) {
	if s.db == nil {
		s.logError(opUpdate, reasonMissingDatabase, errMissingDatabase)
		return Document{}, newServiceError(opUpdate, reasonMissingDatabase, errMissingDatabase)
	}
	scope, err := NewScope(scope.DatabaseID, scope.CollectionID, scope.OwnerID)
	if err != nil {
		return Document{}, newServiceError(opUpdate, reasonInvalidScope, err)
	}
	documentID, err = newIdentifier("document id", documentID)
	if err != nil {
		return Document{}, newServiceError(opUpdate, reasonInvalidID, err)
	}
	if _, err := encodeData(data); err != nil {
		return Document{}, newServiceError(opUpdate, reasonInvalidData, err)
	}

	var updated Document
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Document
		lookupErr := tx.Where(queryScopeDocument, scope.DatabaseID, scope.CollectionID, scope.OwnerID, documentID).Take(&existing).Error
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return newServiceError(opUpdate, reasonNotFound, ErrDocumentNotFound)
		}
		if lookupErr != nil {
			s.logError(opUpdate, reasonQueryFailed, lookupErr, append(scopeFields(scope), zap.String(fieldDocumentID, documentID))...)
			return newServiceError(opUpdate, reasonQueryFailed, lookupErr)
		}

		merged, decodeErr := existing.Data()
		if decodeErr != nil {
			s.logError(opUpdate, reasonInvalidData, decodeErr, append(scopeFields(scope), zap.String(fieldDocumentID, documentID))...)
			return newServiceError(opUpdate, reasonInvalidData, decodeErr)
		}
		for key, value := range data {
			merged[key] = value
		}
		payload, encodeErr := encodeData(merged)
		if encodeErr != nil {
			return newServiceError(opUpdate, reasonInvalidData, encodeErr)
		}

		existing.DataJSON = payload
		existing.UpdatedAtMillis = s.clock().UTC().UnixMilli()
		if err := tx.Save(&existing).Error; err != nil {
			s.logError(opUpdate, reasonSaveFailed, err, append(scopeFields(scope), zap.String(fieldDocumentID, documentID))...)
			return newServiceError(opUpdate, reasonSaveFailed, err)
		}
		updated = existing
		return nil
	})
	if txErr != nil {
		return Document{}, txErr
	}
	return updated, nil
}

// Delete removes a document from the owner's scope.
func (s *Service) Delete(ctx context.Context, scope Scope, documentID string) error {
	if s.db == nil {
		s.logError(opDelete, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(opDelete, reasonMissingDatabase, errMissingDatabase)
	}
	scope, err := NewScope(scope.DatabaseID, scope.CollectionID, scope.OwnerID)
	if err != nil {
		return newServiceError(opDelete, reasonInvalidScope, err)
	}
	documentID, err = newIdentifier("document id", documentID)
	if err != nil {
		return newServiceError(opDelete, reasonInvalidID, err)
	}

	outcome := s.db.WithContext(ctx).
		Where(queryScopeDocument, scope.DatabaseID, scope.CollectionID, scope.OwnerID, documentID).
		Delete(&Document{})
	if outcome.Error != nil {
		s.logError(opDelete, reasonDeleteFailed, outcome.Error, append(scopeFields(scope), zap.String(fieldDocumentID, documentID))...)
		return newServiceError(opDelete, reasonDeleteFailed, outcome.Error)
	}
	if outcome.RowsAffected == 0 {
		return newServiceError(opDelete, reasonNotFound, ErrDocumentNotFound)
	}
	return nil
}

func applyFilter(statement *gorm.DB, filter query.Query) (*gorm.DB, error) {
	if filter.Method != query.MethodEqual {
		return nil, fmt.Errorf("%w: method %q", ErrInvalidFilter, filter.Method)
	}
	if len(filter.Values) == 0 {
		return nil, fmt.Errorf("%w: no values for %q", ErrInvalidFilter, filter.Attribute)
	}
	if filter.Attribute == "$id" {
		return statement.Where(fieldDocumentID+" IN ?", filter.Values), nil
	}
	if !query.ValidAttribute(filter.Attribute) || strings.HasPrefix(filter.Attribute, "$") {
		return nil, fmt.Errorf("%w: attribute %q", ErrInvalidFilter, filter.Attribute)
	}
	path := "$." + filter.Attribute
	if len(filter.Values) == 1 {
		return statement.Where("json_extract(data_json, ?) = ?", path, filter.Values[0]), nil
	}
	return statement.Where("json_extract(data_json, ?) IN ?", path, filter.Values), nil
}

func scopeFields(scope Scope) []zap.Field {
	return []zap.Field{
		zap.String(fieldDatabaseID, scope.DatabaseID),
		zap.String(fieldCollectionID, scope.CollectionID),
		zap.String(fieldOwnerID, scope.OwnerID),
	}
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("documents service error", attrs...)
}
