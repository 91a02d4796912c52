package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/imaging"
	"github.com/spicestory/spicestory/internal/model"
	"github.com/spicestory/spicestory/internal/store"
)

// CatalogHandler serves one catalog (products or menu items).
type CatalogHandler struct {
	DB   *sql.DB
	Kind model.CatalogKind
	// Noun names an item in messages, e.g. "Menu item".
	Noun string
	// Path is the collection route, e.g. "/api/menu".
	Path string
}

// catalogRequest keeps price raw so an absent price can be told apart from
// zero or a non-number.
type catalogRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

func (req catalogRequest) fields() (model.CatalogFields, error) {
	f := model.CatalogFields{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Image:       strings.TrimSpace(req.Image),
	}

	raw := bytes.TrimSpace(req.Price)
	if f.Name == "" || f.Description == "" || f.Category == "" || f.Image == "" ||
		len(raw) == 0 || string(raw) == "null" {
		return f, apperr.Validation("", "All fields are required")
	}

	// Only JSON numbers are accepted; quoted prices are rejected.
	if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
		return f, apperr.Validation("price", "Price must be a positive number")
	}
	price, err := decimal.NewFromString(string(raw))
	if err != nil || !price.IsPositive() {
		return f, apperr.Validation("price", "Price must be a positive number")
	}
	f.Price = price
	return f, nil
}

func (h *CatalogHandler) notFound(w http.ResponseWriter) {
	jsonError(w, http.StatusNotFound, h.Noun+" not found")
}

// List handles GET {Path}.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListCatalogItems(r.Context(), h.DB, h.Kind)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to list "+string(h.Kind)+" items", err))
		return
	}
	if items == nil {
		items = []model.CatalogItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET {Path}/{id}. Malformed ids are reported as not found.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.notFound(w)
		return
	}

	item, err := store.GetCatalogItem(r.Context(), h.DB, h.Kind, id)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to get "+string(h.Kind), err))
		return
	}
	if item == nil {
		h.notFound(w)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST {Path}.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := req.fields()
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := store.CreateCatalogItem(r.Context(), h.DB, h.Kind, fields)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to create "+string(h.Kind), err))
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT {Path}/{id}.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.notFound(w)
		return
	}

	var req catalogRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := req.fields()
	if err != nil {
		writeError(w, r, err)
		return
	}

	found, err := store.UpdateCatalogItem(r.Context(), h.DB, h.Kind, id, fields)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to update "+string(h.Kind), err))
		return
	}
	if !found {
		h.notFound(w)
		return
	}

	item, err := store.GetCatalogItem(r.Context(), h.DB, h.Kind, id)
	if err != nil || item == nil {
		writeError(w, r, apperr.Dependency("failed to get "+string(h.Kind), err))
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE {Path}/{id}.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.notFound(w)
		return
	}

	found, err := store.DeleteCatalogItem(r.Context(), h.DB, h.Kind, id)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to delete "+string(h.Kind), err))
		return
	}
	if !found {
		h.notFound(w)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": h.Noun + " deleted successfully"})
}

// UploadImage handles PUT {Path}/{id}/image. The photo is normalized to JPEG
// and the item's image field is pointed at it.
func (h *CatalogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.notFound(w)
		return
	}

	item, err := store.GetCatalogItem(r.Context(), h.DB, h.Kind, id)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to get "+string(h.Kind), err))
		return
	}
	if item == nil {
		h.notFound(w)
		return
	}

	// Leave room for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "File too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.ProcessPhoto(file)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) || errors.Is(err, imaging.ErrUnsupportedFormat) ||
			errors.Is(err, imaging.ErrTooManyPixels) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		jsonError(w, http.StatusBadRequest, "Invalid image")
		return
	}

	if err := store.SaveCatalogImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		writeError(w, r, apperr.Dependency("failed to save image", err))
		return
	}

	url := h.Path + "/" + id.String() + "/image"
	if err := store.SetCatalogItemImage(r.Context(), h.DB, id, url); err != nil {
		writeError(w, r, apperr.Dependency("failed to set image", err))
		return
	}
	item.Image = url

	jsonResponse(w, http.StatusOK, item)
}

// GetImage handles GET {Path}/{id}/image.
func (h *CatalogHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.notFound(w)
		return
	}

	item, err := store.GetCatalogItem(r.Context(), h.DB, h.Kind, id)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to get "+string(h.Kind), err))
		return
	}
	if item == nil {
		h.notFound(w)
		return
	}

	data, mime, err := store.GetCatalogImage(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to get image", err))
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "No image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
