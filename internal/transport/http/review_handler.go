package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/media"
	"github.com/campthai/campthai-backend/internal/service"
	"github.com/campthai/campthai-backend/internal/util"
)

type ReviewHandler struct {
	reviews *service.ReviewService
	auth    *service.AuthService
}

func RegisterReviews(e *echo.Echo, auth *service.AuthService, reviewService *service.ReviewService, generalLimiter, reviewLimiter echo.MiddlewareFunc) {
	handler := &ReviewHandler{reviews: reviewService, auth: auth}

	e.GET("/api/campsites/:id/reviews", handler.listByCampsite, OptionalAuth(auth), generalLimiter)
	e.POST("/api/campsites/:id/reviews", handler.create, RequireAuth(auth), reviewLimiter)

	reviews := e.Group("/api/reviews", RequireAuth(auth))
	reviews.DELETE("/:id", handler.remove, reviewLimiter)
	reviews.GET("/pending", handler.listPending, RequireAdmin(auth), generalLimiter)
	reviews.POST("/:id/approve", handler.approve, RequireAdmin(auth), generalLimiter)
	reviews.POST("/:id/reject", handler.reject, RequireAdmin(auth), generalLimiter)
}

// create accepts multipart form data: rating, optional title and content,
// plus up to the configured number of photo files under "photos" or
// "photos[]".
func (h *ReviewHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	campsiteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid campsite id"))
	}
	rating, err := strconv.Atoi(strings.TrimSpace(c.FormValue("rating")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("rating must be an integer"))
	}

	var title, content *string
	if v := strings.TrimSpace(c.FormValue("title")); v != "" {
		title = &v
	}
	if v := strings.TrimSpace(c.FormValue("content")); v != "" {
		content = &v
	}

	uploads, closers, err := collectPhotoUploads(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	review, err := h.reviews.Create(c.Request().Context(), service.CreateReviewInput{
		CampsiteID: campsiteID,
		UserID:     user.ID,
		Rating:     rating,
		Title:      title,
		Content:    content,
		Photos:     uploads,
	})
	if err != nil {
		return h.writeReviewError(c, err)
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"review":  buildReviewResponse(review),
		"message": "Review submitted and awaiting moderation",
	})
}

func (h *ReviewHandler) listByCampsite(c echo.Context) error {
	campsiteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid campsite id"))
	}

	filter, err := parseReviewListFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	result, err := h.reviews.ListByCampsite(c.Request().Context(), campsiteID, filter)
	if err != nil {
		return h.writeReviewError(c, err)
	}

	payload := make([]util.Envelope, 0, len(result.Reviews))
	for i := range result.Reviews {
		payload = append(payload, buildReviewResponse(&result.Reviews[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"reviews":   payload,
		"aggregate": result.Aggregate,
		"meta": util.Envelope{
			"limit":  result.Limit,
			"offset": result.Offset,
			"count":  len(payload),
		},
	})
}

func (h *ReviewHandler) listPending(c echo.Context) error {
	limit, offset := parsePagination(c, 20, 0)
	reviews, err := h.reviews.ListPending(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list pending reviews"))
	}
	payload := make([]util.Envelope, 0, len(reviews))
	for i := range reviews {
		payload = append(payload, buildReviewResponse(&reviews[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"reviews": payload,
		"meta": util.Envelope{
			"limit":  limit,
			"offset": offset,
			"count":  len(payload),
		},
	})
}

func (h *ReviewHandler) approve(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid review id"))
	}

	if err := h.reviews.Approve(c.Request().Context(), service.ModerateReviewInput{
		ReviewID:    reviewID,
		ModeratorID: user.ID,
	}); err != nil {
		return h.writeReviewError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Review approved"})
}

func (h *ReviewHandler) reject(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid review id"))
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	var reason *string
	if v := strings.TrimSpace(req.Reason); v != "" {
		reason = &v
	}

	if err := h.reviews.Reject(c.Request().Context(), service.ModerateReviewInput{
		ReviewID:     reviewID,
		ModeratorID:  user.ID,
		RejectReason: reason,
	}); err != nil {
		return h.writeReviewError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Review rejected"})
}

func (h *ReviewHandler) remove(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid review id"))
	}

	if err := h.reviews.Delete(c.Request().Context(), reviewID, user.ID, h.auth.IsAdmin(user)); err != nil {
		return h.writeReviewError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Review deleted"})
}

func (h *ReviewHandler) writeReviewError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		return c.JSON(http.StatusNotFound, util.Error("review not found"))
	case errors.Is(err, service.ErrCampsiteNotFound):
		return c.JSON(http.StatusNotFound, util.Error("campsite not found"))
	case errors.Is(err, service.ErrReviewForbidden):
		return c.JSON(http.StatusForbidden, util.Error("forbidden"))
	case errors.Is(err, service.ErrReviewAlreadyExists):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrReviewNotPending):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrReviewValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}

func parseReviewListFilter(c echo.Context) (domain.ReviewListFilter, error) {
	filter := domain.ReviewListFilter{}
	filter.Limit, filter.Offset = parsePagination(c, 10, 0)

	parseRating := func(name string) (*int, error) {
		v := strings.TrimSpace(c.QueryParam(name))
		if v == "" {
			return nil, nil
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New(name + " must be an integer")
		}
		return &parsed, nil
	}

	var err error
	if filter.Rating, err = parseRating("rating"); err != nil {
		return domain.ReviewListFilter{}, err
	}
	if filter.MinRating, err = parseRating("min_rating"); err != nil {
		return domain.ReviewListFilter{}, err
	}
	if filter.MaxRating, err = parseRating("max_rating"); err != nil {
		return domain.ReviewListFilter{}, err
	}

	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("sort"))); raw != "" {
		switch raw {
		case string(domain.ReviewSortCreatedAt), "recent":
			filter.SortField = domain.ReviewSortCreatedAt
		case string(domain.ReviewSortRating):
			filter.SortField = domain.ReviewSortRating
		default:
			return domain.ReviewListFilter{}, errors.New("invalid sort value")
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("order"))); raw != "" {
		switch raw {
		case string(domain.SortOrderAsc):
			filter.SortOrder = domain.SortOrderAsc
		case string(domain.SortOrderDesc):
			filter.SortOrder = domain.SortOrderDesc
		default:
			return domain.ReviewListFilter{}, errors.New("invalid order value")
		}
	}

	return filter, nil
}

func collectPhotoUploads(c echo.Context) ([]media.Upload, []io.Closer, error) {
	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		// JSON-only reviews without photos are fine.
		return nil, nil, nil
	}
	form := c.Request().MultipartForm
	if form == nil {
		return nil, nil, nil
	}

	var headers []*multipart.FileHeader
	for _, field := range []string{"photos", "photos[]"} {
		headers = append(headers, form.File[field]...)
	}
	if len(headers) == 0 {
		return nil, nil, nil
	}

	uploads := make([]media.Upload, 0, len(headers))
	closers := make([]io.Closer, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			for _, closer := range closers {
				_ = closer.Close()
			}
			return nil, nil, errors.New("unable to read upload")
		}
		closers = append(closers, file)
		uploads = append(uploads, media.Upload{
			Reader:      file,
			Size:        header.Size,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		})
	}
	return uploads, closers, nil
}

func buildReviewResponse(review *domain.Review) util.Envelope {
	if review == nil {
		return util.Envelope{}
	}
	resp := util.Envelope{
		"id":          review.ID,
		"campsite_id": review.CampsiteID,
		"rating":      review.Rating,
		"status":      review.Status,
		"created_at":  review.CreatedAt,
		"updated_at":  review.UpdatedAt,
	}
	if review.Title != nil {
		resp["title"] = *review.Title
	}
	if review.Content != nil {
		resp["content"] = *review.Content
	}
	if review.RejectReason != nil {
		resp["reject_reason"] = *review.RejectReason
	}
	if review.CampsiteName != nil {
		resp["campsite_name"] = *review.CampsiteName
	}

	reviewer := util.Envelope{"id": review.UserID}
	if review.ReviewerName != nil {
		reviewer["full_name"] = *review.ReviewerName
	}
	if review.ReviewerUsername != nil {
		reviewer["username"] = *review.ReviewerUsername
	}
	if review.ReviewerAvatar != nil {
		reviewer["avatar_url"] = *review.ReviewerAvatar
	}
	resp["reviewer"] = reviewer

	if len(review.Photos) > 0 {
		photos := make([]util.Envelope, 0, len(review.Photos))
		for _, photo := range review.Photos {
			photos = append(photos, util.Envelope{
				"id":       photo.ID,
				"url":      photo.URL,
				"ordering": photo.Ordering,
			})
		}
		resp["photos"] = photos
	}
	return resp
}
