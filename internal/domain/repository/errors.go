package repository

import (
	stderrors "errors"

	"agrimarket/internal/domain/entity"
	"agrimarket/pkg/errors"
)

// DomainError translates entity rule violations raised inside a store
// transaction into app errors.
func DomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, entity.ErrInsufficientStock):
		return errors.StockChanged("")
	case stderrors.Is(err, entity.ErrPoolClosed):
		return errors.Conflict("Pool is closed")
	case stderrors.Is(err, entity.ErrInvalidTransition):
		return errors.Validation("status", err.Error())
	default:
		return errors.Validation("quantity", err.Error())
	}
}

// SaleError is DomainError for purchases: a pool that closed after the line
// was added is a stock change the buyer can refresh past.
func SaleError(err error) error {
	if stderrors.Is(err, entity.ErrPoolClosed) {
		return errors.StockChanged("This pool has closed, please refresh")
	}
	return DomainError(err)
}
