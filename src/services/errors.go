package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOutOfStock        = errors.New("out of stock")
	ErrOverReceipt       = errors.New("received quantity exceeds ordered quantity")
	ErrReturnExceeds     = errors.New("return quantity exceeds received quantity")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrDocumentLocked    = errors.New("document is locked")
	ErrConflict          = errors.New("concurrent write conflict")
	ErrNotFound          = errors.New("record not found")
	ErrPersistence       = errors.New("persistence failure")
)

// StockShortError names the offending product and the limiting quantity so
// the operator can correct input without guessing.
type StockShortError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *StockShortError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

func (e *StockShortError) Unwrap() error { return ErrInsufficientStock }

type OverReceiptError struct {
	ProductName string
	Requested   int
	Remaining   int
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf("over-receipt for %q: receiving %d, only %d still receivable",
		e.ProductName, e.Requested, e.Remaining)
}

func (e *OverReceiptError) Unwrap() error { return ErrOverReceipt }

type ReturnExceedsError struct {
	ProductName string
	Requested   int
	Received    int
}

func (e *ReturnExceedsError) Error() string {
	return fmt.Sprintf("return exceeds received for %q: returning %d, received %d",
		e.ProductName, e.Requested, e.Received)
}

func (e *ReturnExceedsError) Unwrap() error { return ErrReturnExceeds }

// translateDBError maps storage-layer failures to the caller-visible kinds.
// Serialization failures and deadlocks surface as Conflict so the caller can
// retry; a duplicate key on an append is treated the same way since it means
// a concurrent writer won.
func translateDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	// already one of ours
	for _, known := range []error{
		ErrValidation, ErrInsufficientStock, ErrOutOfStock, ErrOverReceipt,
		ErrReturnExceeds, ErrInvalidAmount, ErrDocumentLocked, ErrConflict,
		ErrNotFound,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
