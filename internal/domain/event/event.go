package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"tokenestate-backend/pkg/id"
)

const (
	TopicPropertyRegistered  = "property_registered"
	TopicPropertyTransfer    = "property_transfer"
	TopicLoanCreated         = "loan_created"
	TopicInvestmentMade      = "investment_made"
	TopicLoanFullyFunded     = "loan_fully_funded"
	TopicCollateralLocked    = "collateral_locked"
	TopicCollateralReturned  = "collateral_returned"
	TopicInvestorCompensated = "investor_compensated"
	TopicLoanRepaid          = "loan_repaid"
	TopicCollateralExecuted  = "collateral_executed"
)

// Event is one append-only log entry. It is written in the same transaction
// as the state change it describes.
type Event struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement;column:id" json:"-"`
	Ref       string         `gorm:"size:32;not null;uniqueIndex;column:ref" json:"ref"`
	Topic     string         `gorm:"size:64;not null;index;column:topic" json:"topic"`
	SubjectID uint64         `gorm:"not null;index;column:subject_id" json:"subject_id"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Event) TableName() string { return "events" }

type Repository interface {
	Append(ctx context.Context, events []Event) error
	ListBySubject(ctx context.Context, topic string, subjectID uint64) ([]Event, error)
}

// Publisher forwards committed events to off-core observers.
type Publisher interface {
	Publish(ctx context.Context, events []Event) error
}

// NopPublisher drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, []Event) error { return nil }

// Batch collects the events of one operation in emission order.
type Batch struct {
	events []Event
}

// Record appends an event. The payload is encoded as JSON.
func (b *Batch) Record(topic string, subjectID uint64, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}
	b.events = append(b.events, Event{
		Ref:       id.NewID32(),
		Topic:     topic,
		SubjectID: subjectID,
		Payload:   datatypes.JSON(raw),
	})
	return nil
}

func (b *Batch) Events() []Event { return b.events }

func (b *Batch) Len() int { return len(b.events) }

// Flush appends the collected events through repo. Empty batches are a no-op.
func (b *Batch) Flush(ctx context.Context, repo Repository) error {
	if len(b.events) == 0 {
		return nil
	}
	return repo.Append(ctx, b.events)
}

// Publish hands a committed batch to pub. Empty batches are a no-op.
func (b *Batch) Publish(ctx context.Context, pub Publisher) error {
	if len(b.events) == 0 || pub == nil {
		return nil
	}
	return pub.Publish(ctx, b.events)
}
