package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sandanitin/AJ-Mana-Style/internal/backend"
	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/httputil"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/pagination"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/validator"
)

// AdminHandler proxies the admin panel's CRUD screens to the backend.
type AdminHandler struct {
	backend *backend.Storefront
	logger  *slog.Logger
	// zonesChanged runs after a successful write to the shipping zone table.
	zonesChanged func()
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(sf *backend.Storefront, logger *slog.Logger, zonesChanged func()) *AdminHandler {
	return &AdminHandler{
		backend:      sf,
		logger:       logger,
		zonesChanged: zonesChanged,
	}
}

// Routes mounts every admin resource on r.
func (h *AdminHandler) Routes(r chi.Router) {
	r.Route("/shipping-zones", crud(h.backend.Zones, h.logger, h.zonesChanged))
	r.Route("/offer-banners", crud(h.backend.Banners, h.logger, nil))
	r.Route("/faqs", crud(h.backend.FAQs, h.logger, nil))
	r.Route("/testimonials", crud(h.backend.Testimonials, h.logger, nil))
	r.Route("/categories", crud(h.backend.Categories, h.logger, nil))

	r.Route("/newsletter", func(r chi.Router) {
		r.Get("/subscribers", h.ListSubscribers)
		r.Get("/campaigns", h.ListCampaigns)
		r.Post("/campaigns", h.SendCampaign)
	})
}

// ListSubscribers handles GET /api/v1/admin/newsletter/subscribers
func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.backend.Subscribers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writePage(w, r, subscribers)
}

// ListCampaigns handles GET /api/v1/admin/newsletter/campaigns
func (h *AdminHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.backend.Campaigns(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writePage(w, r, campaigns)
}

// SendCampaign handles POST /api/v1/admin/newsletter/campaigns
func (h *AdminHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var req domain.NewsletterCampaign
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	if err := h.backend.SendCampaign(r.Context(), req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// --- Generic resource proxy ---

// normalizer is implemented by records that tidy themselves before validation.
type normalizer interface {
	Normalize()
}

func normalize[T any](item *T) {
	if n, ok := any(item).(normalizer); ok {
		n.Normalize()
	}
}

type resourceHandler[T any] struct {
	resource *backend.Resource[T]
	logger   *slog.Logger
	changed  func()
}

// crud returns a route function serving list/create/update/delete for a
// backend resource. changed, if set, runs after every successful write.
func crud[T any](res *backend.Resource[T], logger *slog.Logger, changed func()) func(chi.Router) {
	if changed == nil {
		changed = func() {}
	}
	h := &resourceHandler[T]{resource: res, logger: logger, changed: changed}
	return func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	}
}

func (h *resourceHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.resource.List(r.Context(), nil)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writePage(w, r, items)
}

func (h *resourceHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	var item T
	if !decodeJSON(w, r, &item) {
		return
	}
	normalize(&item)
	if err := validator.Validate(item); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	data, err := h.resource.Create(r.Context(), item)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.changed()

	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	httputil.WriteData(w, http.StatusCreated, data)
}

func (h *resourceHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}

	var item T
	body, err := withID(raw, id)
	if err == nil {
		err = json.NewDecoder(bytes.NewReader(body)).Decode(&item)
	}
	if err != nil {
		httputil.WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}
	normalize(&item)
	if err := validator.Validate(item); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	if err := h.resource.Update(r.Context(), item); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.changed()

	httputil.WriteData(w, http.StatusOK, item)
}

func (h *resourceHandler[T]) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.resource.Delete(r.Context(), domain.ID(chi.URLParam(r, "id"))); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.changed()

	w.WriteHeader(http.StatusNoContent)
}

// withID sets the "id" field of a JSON object, so the path id always wins
// over one in the body.
func withID(raw []byte, id string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	encoded, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	fields["id"] = encoded
	return json.Marshal(fields)
}

// writePage answers with the page of items selected by ?page and ?per_page.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	httputil.WriteJSON(w, http.StatusOK, pagination.Slice(items, pagination.FromRequest(r)))
}
