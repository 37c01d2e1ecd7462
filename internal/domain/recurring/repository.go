package recurring

import (
	"context"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
)

// Repository provides access to recurring payments
type Repository interface {
	shared.CompanyRepository[Payment]
	// FindActiveForCompany returns every active payment for the company
	FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]Payment, error)
	// SaveWithLock persists with an optimistic-lock version check
	SaveWithLock(ctx context.Context, payment *Payment) error
}
