package service

import (
	"context"

	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/ws"
)

// ReviewService — отзывы клиентов. Публичный отзыв сохраняется как есть,
// администратор может скрыть его через is_active.
type ReviewService struct {
	*ResourceService
	events EventPublisher
}

func NewReviewService(schema *resource.Schema, store Store, events EventPublisher) *ReviewService {
	return &ReviewService{ResourceService: NewResourceService(schema, store), events: events}
}

// SubmitReview сохраняет отзыв с сайта и уведомляет администраторов.
func (s *ReviewService) SubmitReview(ctx context.Context, payload map[string]any) (int64, error) {
	id, err := s.Submit(ctx, payload, nil)
	if err != nil {
		return 0, err
	}
	publishAsync(s.events, ws.EventTestimonialSubmitted, map[string]any{
		"id":            id,
		"customer_name": payload["customer_name"],
		"rating":        payload["rating"],
	})
	return id, nil
}
