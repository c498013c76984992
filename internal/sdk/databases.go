package sdk

import (
	"context"
	"net/http"
	"net/url"
)

// Document is a stored record with its system attributes.
type Document struct {
	ID           string         `json:"$id"`
	DatabaseID   string         `json:"$databaseId"`
	CollectionID string         `json:"$collectionId"`
	CreatedAt    string         `json:"$createdAt"`
	UpdatedAt    string         `json:"$updatedAt"`
	Data         map[string]any `json:"data"`
}

type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// Databases wraps the document endpoints.
type Databases struct {
	client *Client
}

func NewDatabases(client *Client) *Databases {
	return &Databases{client: client}
}

func documentsPath(databaseID, collectionID string) string {
	return "/databases/" + url.PathEscape(databaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}

func documentPath(databaseID, collectionID, documentID string) string {
	return documentsPath(databaseID, collectionID) + "/" + url.PathEscape(documentID)
}

// ListDocuments returns documents matching every encoded query.
func (d *Databases) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (DocumentList, error) {
	params := url.Values{}
	for _, encoded := range queries {
		params.Add("queries[]", encoded)
	}
	var list DocumentList
	err := d.client.call(ctx, http.MethodGet, documentsPath(databaseID, collectionID), params, nil, &list)
	return list, err
}

func (d *Databases) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (Document, error) {
	var document Document
	err := d.client.call(ctx, http.MethodPost, documentsPath(databaseID, collectionID), nil, map[string]any{
		"documentId": documentID,
		"data":       data,
	}, &document)
	return document, err
}

// UpdateDocument merges data into the stored document.
func (d *Databases) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (Document, error) {
	var document Document
	err := d.client.call(ctx, http.MethodPatch, documentPath(databaseID, collectionID, documentID), nil, map[string]any{
		"data": data,
	}, &document)
	return document, err
}

func (d *Databases) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	return d.client.call(ctx, http.MethodDelete, documentPath(databaseID, collectionID, documentID), nil, nil, nil)
}
