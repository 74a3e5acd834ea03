package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/service"
	"github.com/campthai/campthai-backend/internal/util"
)

type CampsiteHandler struct {
	campsites *service.CampsiteService
	provinces *service.ProvinceService
}

func RegisterCampsites(e *echo.Echo, auth *service.AuthService, campsiteService *service.CampsiteService, provinceService *service.ProvinceService, limiter echo.MiddlewareFunc) {
	handler := &CampsiteHandler{campsites: campsiteService, provinces: provinceService}

	public := e.Group("/api", OptionalAuth(auth), limiter)
	public.GET("/search", handler.search)
	public.GET("/map/campsites", handler.mapMarkers)
	public.GET("/campsites/popular", handler.listPopular)
	public.GET("/campsites/:id", handler.getCampsite)
	public.GET("/provinces", handler.listProvinces)
	public.GET("/provinces/:id", handler.getProvince)
}

func (h *CampsiteHandler) search(c echo.Context) error {
	filter, err := parseCampsiteFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	filter.Limit, filter.Offset = parsePagination(c, 20, 0)

	result, err := h.campsites.Search(c.Request().Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrSearchValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to search campsites"))
	}

	payload := make([]util.Envelope, 0, len(result.Items))
	for i := range result.Items {
		payload = append(payload, buildCampsiteResponse(&result.Items[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"campsites": payload,
		"meta": util.Envelope{
			"total":  result.Total,
			"limit":  result.Limit,
			"offset": result.Offset,
			"count":  len(payload),
		},
	})
}

func (h *CampsiteHandler) mapMarkers(c echo.Context) error {
	bounds, err := parseMapBounds(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	filter, err := parseCampsiteFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	markers, err := h.campsites.MarkersInBounds(c.Request().Context(), bounds, filter)
	if err != nil {
		if errors.Is(err, service.ErrSearchValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load map markers"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"markers": markers,
		"meta":    util.Envelope{"count": len(markers)},
	})
}

func (h *CampsiteHandler) listPopular(c echo.Context) error {
	campsites, err := h.campsites.ListPopular(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load popular campsites"))
	}
	payload := make([]util.Envelope, 0, len(campsites))
	for i := range campsites {
		payload = append(payload, buildCampsiteResponse(&campsites[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{"campsites": payload})
}

func (h *CampsiteHandler) getCampsite(c echo.Context) error {
	key := strings.TrimSpace(c.Param("id"))
	if key == "" {
		return c.JSON(http.StatusBadRequest, util.Error("identifier required"))
	}

	var (
		campsite *domain.Campsite
		err      error
	)
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		campsite, err = h.campsites.GetPublishedByID(c.Request().Context(), id)
	} else {
		campsite, err = h.campsites.GetPublishedBySlug(c.Request().Context(), key)
	}
	if err != nil {
		if errors.Is(err, service.ErrCampsiteNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("campsite not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load campsite"))
	}

	return c.JSON(http.StatusOK, util.Envelope{"campsite": buildCampsiteResponse(campsite)})
}

func (h *CampsiteHandler) listProvinces(c echo.Context) error {
	provinces, err := h.provinces.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list provinces"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"provinces": provinces})
}

func (h *CampsiteHandler) getProvince(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid province id"))
	}
	province, err := h.provinces.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProvinceNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("province not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load province"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"province": province})
}

func parseCampsiteFilter(c echo.Context) (domain.CampsiteFilter, error) {
	filter := domain.CampsiteFilter{
		Query: strings.TrimSpace(c.QueryParam("query")),
	}

	if v := strings.TrimSpace(c.QueryParam("province_id")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return domain.CampsiteFilter{}, errors.New("province_id must be a positive integer")
		}
		filter.ProvinceID = &parsed
	}

	for _, raw := range splitCSV(c.QueryParam("types")) {
		t := domain.CampsiteType(strings.ToLower(raw))
		if !t.Valid() {
			return domain.CampsiteFilter{}, fmt.Errorf("unknown campsite type %q", raw)
		}
		filter.Types = append(filter.Types, t)
	}

	if amenities := splitCSV(c.QueryParam("amenities")); len(amenities) > 0 {
		filter.Amenities = amenities
	}

	if v := strings.TrimSpace(c.QueryParam("min_price")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return domain.CampsiteFilter{}, errors.New("min_price must be a non-negative integer")
		}
		filter.MinPrice = &parsed
	}
	if v := strings.TrimSpace(c.QueryParam("max_price")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return domain.CampsiteFilter{}, errors.New("max_price must be a non-negative integer")
		}
		filter.MaxPrice = &parsed
	}

	if v := strings.TrimSpace(c.QueryParam("min_rating")); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 || parsed > 5 {
			return domain.CampsiteFilter{}, errors.New("min_rating must be a number between 0 and 5")
		}
		filter.MinRating = &parsed
	}

	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("sort"))); raw != "" {
		switch raw {
		case string(domain.CampsiteSortRecommended), string(domain.CampsiteSortPriceAsc),
			string(domain.CampsiteSortPriceDesc), string(domain.CampsiteSortRating),
			string(domain.CampsiteSortNewest):
			filter.Sort = domain.CampsiteSort(raw)
		default:
			return domain.CampsiteFilter{}, fmt.Errorf("invalid sort value %q", raw)
		}
	}

	return filter, nil
}

func parseMapBounds(c echo.Context) (domain.MapBounds, error) {
	var bounds domain.MapBounds
	for _, field := range []struct {
		name string
		dst  *float64
	}{
		{"min_lat", &bounds.MinLat},
		{"max_lat", &bounds.MaxLat},
		{"min_lng", &bounds.MinLng},
		{"max_lng", &bounds.MaxLng},
	} {
		raw := strings.TrimSpace(c.QueryParam(field.name))
		if raw == "" {
			return domain.MapBounds{}, fmt.Errorf("%s is required", field.name)
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.MapBounds{}, fmt.Errorf("%s must be a number", field.name)
		}
		*field.dst = parsed
	}
	return bounds, nil
}

func buildCampsiteResponse(campsite *domain.Campsite) util.Envelope {
	if campsite == nil {
		return util.Envelope{}
	}
	resp := util.Envelope{
		"id":             campsite.ID,
		"name":           campsite.Name,
		"slug":           campsite.Slug,
		"type":           campsite.Type,
		"province_id":    campsite.ProvinceID,
		"latitude":       campsite.Latitude,
		"longitude":      campsite.Longitude,
		"price_min":      campsite.PriceMin,
		"price_max":      campsite.PriceMax,
		"amenities":      campsite.Amenities,
		"average_rating": campsite.AverageRating,
		"review_count":   campsite.ReviewCount,
		"created_at":     campsite.CreatedAt,
		"updated_at":     campsite.UpdatedAt,
	}
	if campsite.ProvinceName != nil {
		resp["province_name"] = *campsite.ProvinceName
	}
	if campsite.District != nil {
		resp["district"] = *campsite.District
	}
	if campsite.Description != nil {
		resp["description"] = *campsite.Description
	}
	if campsite.HeroImage != nil {
		resp["hero_image_url"] = *campsite.HeroImage
	}
	if len(campsite.Gallery) > 0 {
		resp["gallery"] = campsite.Gallery
	}
	if campsite.Contact != nil {
		resp["contact"] = *campsite.Contact
	}
	return resp
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parsePagination(c echo.Context, defaultLimit, defaultOffset int) (int, int) {
	limit := defaultLimit
	offset := defaultOffset
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
