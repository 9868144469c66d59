package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-product-catalog/internal/model"
	"go-product-catalog/internal/service"
	"go-product-catalog/pkg/apierror"
)

type ProductHandler struct {
	catalog *service.CatalogService
}

func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, product, nil)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, product, nil)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := model.ProductQuery{
		Category:    strings.TrimSpace(params.Get("category")),
		Name:        strings.TrimSpace(params.Get("name")),
		Description: strings.TrimSpace(params.Get("description")),
		Search:      strings.TrimSpace(params.Get("search")),
	}
	query.Page, _ = strconv.Atoi(params.Get("page"))
	query.Limit, _ = strconv.Atoi(params.Get("limit"))

	products, meta, err := h.catalog.List(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, products, &meta)
}

func (h *ProductHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.catalog.Retrieve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, product, nil)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// productID parses the {id} URL parameter. Non-numeric ids cannot address any
// product, so they report 404 rather than 400.
func productID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.NotFound("product not found", raw)
	}
	return id, nil
}
