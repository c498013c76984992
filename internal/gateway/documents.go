package gateway

import (
	"context"
	"strings"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/query"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/result"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
	"go.uber.org/zap"
)

const messageMissingID = "Id cannot be empty"

// DatabasesAPI is the document surface of the backend SDK.
type DatabasesAPI interface {
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (sdk.DocumentList, error)
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (sdk.Document, error)
	UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (sdk.Document, error)
	DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error
}

// Filter is an equality predicate on a document field.
type Filter struct {
	Field string
	Value any
}

// DocumentGateway is generic CRUD over a (database, collection) pair.
type DocumentGateway struct {
	databases DatabasesAPI
	logger    *zap.Logger
}

func NewDocumentGateway(databases DatabasesAPI, logger *zap.Logger) *DocumentGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentGateway{databases: databases, logger: logger}
}

func (g *DocumentGateway) List(ctx context.Context, databaseID, collectionID string, filters []Filter) result.Result[[]sdk.Document] {
	queries := make([]string, 0, len(filters))
	for _, filter := range filters {
		encoded, err := query.Equal(filter.Field, filter.Value)
		if err != nil {
			g.logFailure("error listing documents", databaseID, collectionID, "", err)
			return result.Err[[]sdk.Document](err.Error())
		}
		queries = append(queries, encoded)
	}
	list, err := g.databases.ListDocuments(ctx, databaseID, collectionID, queries)
	if err != nil {
		g.logFailure("error listing documents", databaseID, collectionID, "", err)
		return result.Err[[]sdk.Document](err.Error())
	}
	return result.Ok(list.Documents)
}

// Create stores data under documentID. An empty id lets the service generate one.
func (g *DocumentGateway) Create(ctx context.Context, databaseID, collectionID string, data map[string]any, documentID string) result.Result[sdk.Document] {
	if strings.TrimSpace(documentID) == "" {
		documentID = "unique()"
	}
	document, err := g.databases.CreateDocument(ctx, databaseID, collectionID, documentID, data)
	if err != nil {
		g.logFailure("error creating document", databaseID, collectionID, documentID, err)
		return result.Err[sdk.Document](err.Error())
	}
	return result.Ok(document)
}

func (g *DocumentGateway) Update(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) result.Result[sdk.Document] {
	document, err := g.databases.UpdateDocument(ctx, databaseID, collectionID, documentID, data)
	if err != nil {
		g.logFailure("error updating document", databaseID, collectionID, documentID, err)
		return result.Err[sdk.Document](err.Error())
	}
	return result.Ok(document)
}

func (g *DocumentGateway) Delete(ctx context.Context, databaseID, collectionID, documentID string) result.Result[bool] {
	if documentID == "" {
		return result.Err[bool](messageMissingID)
	}
	if err := g.databases.DeleteDocument(ctx, databaseID, collectionID, documentID); err != nil {
		g.logFailure("error deleting document", databaseID, collectionID, documentID, err)
		return result.Err[bool](err.Error())
	}
	return result.Ok(true)
}

func (g *DocumentGateway) logFailure(message, databaseID, collectionID, documentID string, err error) {
	fields := []zap.Field{
		zap.String("database_id", databaseID),
		zap.String("collection_id", collectionID),
	}
	if documentID != "" {
		fields = append(fields, zap.String("document_id", documentID))
	}
	fields = append(fields, zap.Error(err))
	g.logger.Error(message, fields...)
}
