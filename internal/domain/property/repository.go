package property

import "context"

type Repository interface {
	Create(ctx context.Context, p *Property) error
	// GetByID returns gorm.ErrRecordNotFound when absent.
	GetByID(ctx context.Context, id uint64) (*Property, error)
	ExistsByTicker(ctx context.Context, ticker string) (bool, error)
}
