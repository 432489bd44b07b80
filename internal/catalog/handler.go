package catalog

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/megano-shop/backend/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/catalog", h.getCatalog)
	app.Get("/api/v1/products/limited", h.getLimited)
	app.Get("/api/v1/products/popular", h.getPopular)
	app.Get("/api/v1/banners", h.getBanners)
	app.Get("/api/v1/product/:id<[0-9]+>", h.getProduct)
}

func (h *Handler) getCatalog(c *fiber.Ctx) error {
	req, err := parseListingRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	log.Debug().
		Str("name", req.Filter.Name).
		Str("minPrice", req.Filter.MinPrice.String()).
		Str("maxPrice", req.Filter.MaxPrice.String()).
		Bool("available", req.Filter.Available).
		Bool("freeDelivery", req.Filter.FreeDelivery).
		Ints("tags", req.Filter.TagIDs).
		Int("category", req.Filter.CategoryID).
		Str("sort", string(req.Sort)).
		Str("sortType", string(req.SortType)).
		Int("limit", req.Limit).
		Int("currentPage", req.CurrentPage).
		Msg("catalog listing")

	page, err := h.service.List(req)
	if err != nil {
		if apperr.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(page)
}

func (h *Handler) getLimited(c *fiber.Ctx) error {
	items, err := h.service.Limited()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) getPopular(c *fiber.Ctx) error {
	items, err := h.service.Popular()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) getBanners(c *fiber.Ctx) error {
	items, err := h.service.Banners()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(items)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	item, err := h.service.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(item)
}

// parseListingRequest reads the catalog query parameters the frontend
// sends: filter[...] options, tags[] ids, sort/sortType, limit and
// currentPage.
func parseListingRequest(c *fiber.Ctx) (ListingRequest, error) {
	req := ListingRequest{
		Filter:      DefaultFilter(),
		Sort:        SortKey(c.Query("sort")),
		SortType:    Direction(c.Query("sortType")),
		Limit:       DefaultPageSize,
		CurrentPage: DefaultPage,
	}

	req.Filter.Name = c.Query("filter[name]")

	if raw := c.Query("filter[minPrice]"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return ListingRequest{}, apperr.Validation("filter[minPrice]", "must be a non-negative number")
		}
		req.Filter.MinPrice = v
	}
	if raw := c.Query("filter[maxPrice]"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return ListingRequest{}, apperr.Validation("filter[maxPrice]", "must be a non-negative number")
		}
		req.Filter.MaxPrice = v
	}
	req.Filter.Available = c.Query("filter[available]") == "true"
	req.Filter.FreeDelivery = c.Query("filter[freeDelivery]") == "true"

	for _, raw := range c.Context().QueryArgs().PeekMulti("tags[]") {
		id, err := strconv.Atoi(string(raw))
		if err != nil || id <= 0 {
			return ListingRequest{}, apperr.Validation("tags[]", "tag ids must be positive integers")
		}
		req.Filter.TagIDs = append(req.Filter.TagIDs, id)
	}

	if raw := c.Query("category"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return ListingRequest{}, apperr.Validation("category", "must be a positive integer")
		}
		req.Filter.CategoryID = id
	}

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return ListingRequest{}, apperr.Validation("limit", "must be a positive integer")
		}
		req.Limit = v
	}
	if raw := c.Query("currentPage"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return ListingRequest{}, apperr.Validation("currentPage", "must be a positive integer")
		}
		req.CurrentPage = v
	}

	return req, nil
}
