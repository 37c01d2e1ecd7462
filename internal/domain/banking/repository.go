package banking

import (
	"context"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
)

// StatementRepository provides access to bank statements
type StatementRepository interface {
	shared.CompanyRepository[Statement]
	// FindLatestPerAccount returns the newest statement for each account
	// of the company, by statement period end.
	FindLatestPerAccount(ctx context.Context, companyID uuid.UUID) ([]Statement, error)
	SaveWithLock(ctx context.Context, statement *Statement) error
}

// TransactionRepository provides access to statement transactions
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByStatement(ctx context.Context, statementID uuid.UUID) ([]Transaction, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Transaction, error)
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
}
