package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/service/review"
)

// ItemHandler serves the review endpoints.
type ItemHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(reviewService review.ReviewService, logger *slog.Logger) *ItemHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil for ItemHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ItemHandler")
	}
	return &ItemHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "item_handler")),
	}
}

// RegisterRoutes mounts the handler on r. Authentication is applied by the
// caller.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{category}/due", h.DueItems)

	r.Post("/items", h.CreateItem)
	r.Post("/items/unarchive", h.BulkUnarchive)
	r.Get("/items/archived", h.ListArchived)
	r.Get("/items/archived/random", h.SampleArchived)

	r.Route("/items/{id}", func(r chi.Router) {
		r.Get("/", h.GetItem)
		r.Put("/", h.UpdateBack)
		r.Delete("/", h.DeleteItem)
		r.Post("/rating", h.Rate)
		r.Post("/flip", h.Flip)
		r.Post("/archive", h.Archive)
		r.Post("/unarchive", h.Unarchive)
	})
}

// ListCategories handles GET /categories.
func (h *ItemHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := handleOwner(w, r, log)
	if !ok {
		return
	}

	categories, err := h.reviewService.Categories(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	shared.RespondWithData(w, r, http.StatusOK, "", categories)
}

// DueItems handles GET /categories/{category}/due.
func (h *ItemHandler) DueItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := handleOwner(w, r, log)
	if !ok {
		return
	}

	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if category == "" {
		HandleAPIError(w, r, domain.NewValidationError("category", "is required", nil), "")
		return
	}

	items, err := h.reviewService.DueItems(r.Context(), ownerID, category)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load due items")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", itemsToResponse(items))
}

// CreateItem handles POST /items.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := handleOwner(w, r, log)
	if !ok {
		return
	}

	var req CreateItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.reviewService.CreateItem(r.Context(), ownerID, review.NewItemInput{
		Front:        req.Front,
		Back:         req.Back,
		Category:     req.Category,
		ExampleFront: req.ExampleFront,
		ExampleBack:  req.ExampleBack,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create item")
		return
	}

	log.Debug("created item", slog.String("item_id", item.ID.String()))
	shared.RespondWithData(w, r, http.StatusCreated, "Item created", itemToResponse(item))
}

// GetItem handles GET /items/{id}.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, itemID, ok := handleOwnerAndPathUUID(w, r, log)
	if !ok {
		return
	}

	item, err := h.reviewService.GetItem(r.Context(), ownerID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load item")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", itemToResponse(item))
}

// UpdateBack handles PUT /items/{id}.
func (h *ItemHandler) UpdateBack(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, itemID, ok := handleOwnerAndPathUUID(w, r, log)
	if !ok {
		return
	}

	var req UpdateBackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.reviewService.UpdateBack(r.Context(), ownerID, itemID, req.Back)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update item")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Item updated", itemToResponse(item))
}

// DeleteItem handles DELETE /items/{id}.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, itemID, ok := handleOwnerAndPathUUID(w, r, log)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteItem(r.Context(), ownerID, itemID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete item")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Item deleted", nil)
}

// Rate handles POST /items/{id}/rating.
func (h *ItemHandler) Rate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, itemID, ok := handleOwnerAndPathUUID(w, r, log)
	if !ok {
		return
	}

	var req RateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.reviewService.Rate(r.Context(), ownerID, itemID, domain.Rating(*req.Rating))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save rating")
		return
	}

	log.Debug("rated item",
		slog.String("item_id", itemID.String()),
		slog.Int("rating", *req.Rating),
		slog.String("next_review_date", item.State.NextReviewDate.String()))
	shared.RespondWithData(w, r, http.StatusOK, "Rating saved", itemToResponse(item))
}

// Flip handles POST /items/{id}/flip.
func (h *ItemHandler) Flip(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, itemID, ok := handleOwnerAndPathUUID(w, r, log)
	if !ok {
		return
	}

	counted, err := h.reviewService.Flip(r.Context(), ownerID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record flip")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", FlipResponse{Success: counted})
}

// Archive handles POST /items/{id}/archive.
func (h *ItemHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// Unarchive handles POST /items/{id}/unarchive.
func (h *ItemHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *ItemHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, itemID, ok := handleOwnerAndPathUUID(w, r, log)
	if !ok {
		return
	}

	if err := h.reviewService.SetArchived(r.Context(), ownerID, itemID, archived); err != nil {
		HandleAPIError(w, r, err, "Failed to update item")
		return
	}

	message := "Item unarchived"
	if archived {
		message = "Item archived"
	}
	shared.RespondWithData(w, r, http.StatusOK, message, nil)
}

// BulkUnarchive handles POST /items/unarchive.
func (h *ItemHandler) BulkUnarchive(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := handleOwner(w, r, log)
	if !ok {
		return
	}

	var req BulkUnarchiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	n, err := h.reviewService.BulkUnarchive(r.Context(), ownerID, req.IDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to unarchive items")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", BulkUnarchiveResponse{Unarchived: n})
}

// ListArchived handles GET /items/archived?page=&search=.
func (h *ItemHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := handleOwner(w, r, log)
	if !ok {
		return
	}

	page, err := h.reviewService.ListArchived(r.Context(), ownerID, queryPage(r), r.URL.Query().Get("search"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list archived items")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", archivedPageToResponse(page))
}

// SampleArchived handles GET /items/archived/random?count=.
func (h *ItemHandler) SampleArchived(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := handleOwner(w, r, log)
	if !ok {
		return
	}

	count, err := queryCount(r, DefaultSampleCount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.reviewService.SampleArchived(r.Context(), ownerID, count)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to sample archived items")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "", itemsToResponse(items))
}
