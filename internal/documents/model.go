package documents

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const maxIdentifierLength = 190

var (
	// ErrInvalidIdentifier indicates that a database, collection, document or owner id is empty or too long.
	ErrInvalidIdentifier = errors.New("documents: invalid identifier")
	// ErrInvalidData indicates a document payload that cannot be stored.
	ErrInvalidData = errors.New("documents: invalid data")
	// ErrInvalidFilter indicates a filter on an attribute the store cannot query.
	ErrInvalidFilter = errors.New("documents: invalid filter")
	// ErrDocumentNotFound indicates the document does not exist in the caller's scope.
	ErrDocumentNotFound = errors.New("documents: document not found")
	// ErrDocumentExists indicates a create with an id already in use.
	ErrDocumentExists = errors.New("documents: document already exists")
)

// Document is the persisted record. Documents are private to their owner.
type Document struct {
	DatabaseID      string `gorm:"column:database_id;primaryKey;size:190;not null;index:idx_documents_scope,priority:1"`
	CollectionID    string `gorm:"column:collection_id;primaryKey;size:190;not null;index:idx_documents_scope,priority:2"`
	DocumentID      string `gorm:"column:document_id;primaryKey;size:190;not null"`
	OwnerID         string `gorm:"column:owner_id;size:190;not null;index:idx_documents_scope,priority:3"`
	DataJSON        string `gorm:"column:data_json;type:text;not null"`
	CreatedAtMillis int64  `gorm:"column:created_at_ms;not null;index:idx_documents_scope,priority:4"`
	UpdatedAtMillis int64  `gorm:"column:updated_at_ms;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Document) TableName() string {
	return "documents"
}

// Data decodes the stored payload.
func (d Document) Data() (map[string]any, error) {
	data := map[string]any{}
	if strings.TrimSpace(d.DataJSON) == "" {
		return data, nil
	}
	if err := json.Unmarshal([]byte(d.DataJSON), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return data, nil
}

// Scope identifies the collection and owner an operation applies to.
type Scope struct {
	DatabaseID   string
	CollectionID string
	OwnerID      string
}

// NewScope validates raw identifiers and returns a Scope.
func NewScope(databaseID, collectionID, ownerID string) (Scope, error) {
	database, err := newIdentifier("database id", databaseID)
	if err != nil {
		return Scope{}, err
	}
	collection, err := newIdentifier("collection id", collectionID)
	if err != nil {
		return Scope{}, err
	}
	owner, err := newIdentifier("owner id", ownerID)
	if err != nil {
		return Scope{}, err
	}
	return Scope{DatabaseID: database, CollectionID: collection, OwnerID: owner}, nil
}

func newIdentifier(label, rawInput string) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s empty", ErrInvalidIdentifier, label)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidIdentifier, label, maxIdentifierLength)
	}
	return trimmed, nil
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		return "", fmt.Errorf("%w: data required", ErrInvalidData)
	}
	for key := range data {
		if strings.HasPrefix(key, "$") {
			return "", fmt.Errorf("%w: attribute %q is reserved", ErrInvalidData, key)
		}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return string(encoded), nil
}
