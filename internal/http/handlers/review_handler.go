package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/binhminh-backend/internal/http/response"
	"github.com/ignatzorin/binhminh-backend/internal/service"
)

// ReviewHandler — отзывы клиентов: публичная отправка плюс типовой CRUD.
type ReviewHandler struct {
	*ResourceHandler
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		ResourceHandler: NewResourceHandler(reviews.ResourceService),
		reviews:         reviews,
	}
}

// Submit POST /api/testimonials
func (h *ReviewHandler) Submit(c *gin.Context) {
	h.tag(c)
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := h.reviews.SubmitReview(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Gửi đánh giá thành công", gin.H{"id": id})
}
