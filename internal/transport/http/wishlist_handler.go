package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campthai/campthai-backend/internal/service"
	"github.com/campthai/campthai-backend/internal/util"
)

type WishlistHandler struct {
	wishlists *service.WishlistService
}

func RegisterWishlist(e *echo.Echo, auth *service.AuthService, wishlistService *service.WishlistService, limiter echo.MiddlewareFunc) {
	handler := &WishlistHandler{wishlists: wishlistService}

	group := e.Group("/api/wishlist", RequireAuth(auth), limiter)
	group.GET("", handler.list)
	group.POST("", handler.save)
	group.DELETE("/:campsiteId", handler.remove)
	group.GET("/compare", handler.compare)
}

func (h *WishlistHandler) list(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	limit, offset := parsePagination(c, 20, 0)
	page, err := h.wishlists.List(c.Request().Context(), user.ID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load wishlist"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"items": page.Items,
		"meta": util.Envelope{
			"total":  page.Total,
			"limit":  page.Limit,
			"offset": page.Offset,
			"count":  len(page.Items),
		},
	})
}

func (h *WishlistHandler) save(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		CampsiteID string `json:"campsite_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	campsiteID, err := uuid.Parse(strings.TrimSpace(req.CampsiteID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("campsite_id must be a valid UUID"))
	}

	item, err := h.wishlists.Save(c.Request().Context(), user.ID, campsiteID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampsiteNotFound):
			return c.JSON(http.StatusNotFound, util.Error("campsite not found"))
		case errors.Is(err, service.ErrWishlistAlreadyExists):
			return c.JSON(http.StatusConflict, util.Error("campsite already in wishlist"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to save to wishlist"))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{"item": item})
}

func (h *WishlistHandler) remove(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	campsiteID, err := uuid.Parse(c.Param("campsiteId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid campsite id"))
	}

	if err := h.wishlists.Remove(c.Request().Context(), user.ID, campsiteID); err != nil {
		if errors.Is(err, service.ErrWishlistNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("campsite not in wishlist"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to remove from wishlist"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Removed from wishlist"})
}

func (h *WishlistHandler) compare(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	raw := splitCSV(c.QueryParam("ids"))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, part := range raw {
		id, err := uuid.Parse(part)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("ids must be valid UUIDs"))
		}
		ids = append(ids, id)
	}

	campsites, err := h.wishlists.Compare(c.Request().Context(), user.ID, ids)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompareValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrCampsiteNotFound):
			return c.JSON(http.StatusNotFound, util.Error("campsite not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to compare campsites"))
		}
	}

	payload := make([]util.Envelope, 0, len(campsites))
	for i := range campsites {
		payload = append(payload, buildCampsiteResponse(&campsites[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{"campsites": payload})
}
