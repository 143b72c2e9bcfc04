// Package repository declares the persistence contracts of the ledger. The
// ledger only ever reads full histories and writes whole records; derived
// figures such as stock and dues are never stored as a source of truth.
package repository

import (
	"context"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

// LoadingRepository stores loading records together with their lines.
type LoadingRepository interface {
	InsertLoading(ctx context.Context, record *models.LoadingRecord) error
	// UpdateLoading replaces the record if its stored version equals
	// expectedVersion, bumping the version on success.
	UpdateLoading(ctx context.Context, record *models.LoadingRecord, expectedVersion int64) error
	DeleteLoading(ctx context.Context, id string, expectedVersion int64) error
	GetLoading(ctx context.Context, id string) (*models.LoadingRecord, error)
	ListLoadings(ctx context.Context, filter models.LoadingFilter) ([]models.LoadingRecord, error)
}

// PaymentRepository stores append-only payments.
type PaymentRepository interface {
	InsertPayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
}

// VarietyRepository stores the fish variety catalogue.
type VarietyRepository interface {
	InsertVariety(ctx context.Context, variety models.Variety) error
	GetVariety(ctx context.Context, code string) (models.Variety, error)
	ListVarieties(ctx context.Context) ([]models.Variety, error)
}

// SnapshotRepository keeps ledger snapshots for later reporting.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot models.LedgerSnapshot) error
}

// Store is the full persistence surface used by the service.
type Store interface {
	LoadingRepository
	PaymentRepository
	VarietyRepository
	SnapshotRepository
	Close(ctx context.Context) error
}
