package counter

import "context"

const (
	Property = "property"
	Borrow   = "borrow"
)

// Counter is a named monotonically increasing id sequence. Ids start at 1.
type Counter struct {
	Name string `gorm:"primaryKey;size:32;column:name"`
	Next uint64 `gorm:"not null;column:next"`
}

func (Counter) TableName() string { return "counters" }

type Repository interface {
	// Next returns the current value and advances the sequence.
	Next(ctx context.Context, name string) (uint64, error)
}
