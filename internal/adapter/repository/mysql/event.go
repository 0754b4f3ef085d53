package mysql

import (
	"context"

	eventDomain "tokenestate-backend/internal/domain/event"

	"gorm.io/gorm"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Append(ctx context.Context, events []eventDomain.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *EventRepository) ListBySubject(ctx context.Context, topic string, subjectID uint64) ([]eventDomain.Event, error) {
	var out []eventDomain.Event
	q := r.db.WithContext(ctx).Where("subject_id = ?", subjectID)
	if topic != "" {
		q = q.Where("topic = ?", topic)
	}
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}
