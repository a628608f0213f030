package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
)

// DeleteStyle selects how a resource endpoint expects the id on DELETE.
type DeleteStyle int

const (
	// DeleteByQuery sends DELETE endpoint?id=<id>.
	DeleteByQuery DeleteStyle = iota
	// DeleteByBody sends DELETE endpoint with body {"id":<id>}.
	DeleteByBody
)

// Resource is a CRUD endpoint of the backend. Updates are PUT with the full
// record, which carries its own id.
type Resource[T any] struct {
	client      *Client
	endpoint    string
	deleteStyle DeleteStyle
}

// NewResource binds a CRUD endpoint.
func NewResource[T any](client *Client, endpoint string, style DeleteStyle) *Resource[T] {
	return &Resource[T]{client: client, endpoint: endpoint, deleteStyle: style}
}

// Endpoint returns the endpoint path relative to the backend base URL.
func (r *Resource[T]) Endpoint() string { return r.endpoint }

// List returns every record matching query.
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var items []T
	if err := r.client.call(ctx, http.MethodGet, r.endpoint, query, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create stores item and returns whatever the backend echoes as data.
func (r *Resource[T]) Create(ctx context.Context, item T) (json.RawMessage, error) {
	var data json.RawMessage
	if err := r.client.call(ctx, http.MethodPost, r.endpoint, nil, item, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Update replaces the stored record.
func (r *Resource[T]) Update(ctx context.Context, item T) error {
	return r.client.call(ctx, http.MethodPut, r.endpoint, nil, item, nil)
}

// Delete removes the record with id.
func (r *Resource[T]) Delete(ctx context.Context, id domain.ID) error {
	if r.deleteStyle == DeleteByBody {
		return r.client.call(ctx, http.MethodDelete, r.endpoint, nil, map[string]domain.ID{"id": id}, nil)
	}
	return r.client.call(ctx, http.MethodDelete, r.endpoint, url.Values{"id": {id.String()}}, nil, nil)
}
