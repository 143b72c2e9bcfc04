package sheets

import (
	"context"
	"fmt"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

const (
	stockRange     = "Stock!A:F"
	duesRange      = "Dues!A:G"
	timestampShape = "2006-01-02 15:04"
)

// SnapshotExporter writes ledger snapshots as spreadsheet rows for the
// accounts team. It only reads already computed totals.
type SnapshotExporter struct {
	repo Repository
}

// NewSnapshotExporter wraps a row repository.
func NewSnapshotExporter(repo Repository) *SnapshotExporter {
	return &SnapshotExporter{repo: repo}
}

// ExportSnapshot appends one stock row per variety and one due row per pending account.
func (e *SnapshotExporter) ExportSnapshot(ctx context.Context, snapshot models.LedgerSnapshot) error {
	if err := e.repo.AppendRows(ctx, stockRange, StockRows(snapshot)); err != nil {
		return fmt.Errorf("export stock rows: %w", err)
	}
	if err := e.repo.AppendRows(ctx, duesRange, DueRows(snapshot)); err != nil {
		return fmt.Errorf("export due rows: %w", err)
	}
	return nil
}

// StockRows renders the stock section of a snapshot.
func StockRows(snapshot models.LedgerSnapshot) [][]interface{} {
	taken := snapshot.TakenAt.Format(timestampShape)
	rows := make([][]interface{}, 0, len(snapshot.Stock))
	for _, p := range snapshot.Stock {
		rows = append(rows, []interface{}{taken, p.VarietyCode, p.IntakeKgs, p.DispatchedKgs, p.NetKgs, p.NetTrays})
	}
	return rows
}

// DueRows renders the pending dues of both sides of a snapshot.
func DueRows(snapshot models.LedgerSnapshot) [][]interface{} {
	taken := snapshot.TakenAt.Format(timestampShape)
	accounts := append(append([]models.DueAccount(nil), snapshot.PendingClients...), snapshot.PendingVendors...)

	rows := make([][]interface{}, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []interface{}{
			taken, string(a.PartyKind), a.PartyName,
			a.TotalBilled.String(), a.TotalPaid.String(), a.Due.String(), a.RecordCount,
		})
	}
	return rows
}
