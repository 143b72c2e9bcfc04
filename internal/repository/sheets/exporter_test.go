package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

type recordingRepo struct {
	appended map[string][][]interface{}
	failOn   string
}

func (r *recordingRepo) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == r.failOn {
		return errors.New("quota exceeded")
	}
	if r.appended == nil {
		r.appended = map[string][][]interface{}{}
	}
	r.appended[sheetRange] = append(r.appended[sheetRange], rows...)
	return nil
}

func sampleSnapshot() models.LedgerSnapshot {
	return models.LedgerSnapshot{
		TakenAt: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
		Stock: []models.StockPosition{
			{VarietyCode: "RC", IntakeKgs: 1000, DispatchedKgs: 500, NetKgs: 500, NetTrays: 14},
		},
		PendingClients: []models.DueAccount{{
			PartyName: "Ravi", PartyKind: models.PartyClient,
			TotalBilled: decimal.NewFromInt(150000), TotalPaid: decimal.NewFromInt(80000),
			Due: decimal.NewFromInt(70000), RecordCount: 2,
		}},
		PendingVendors: []models.DueAccount{{
			PartyName: "Suresh", PartyKind: models.PartyVendor,
			TotalBilled: decimal.NewFromInt(5000), TotalPaid: decimal.Zero,
			Due: decimal.NewFromInt(5000), RecordCount: 1,
		}},
	}
}

func TestSnapshotExporter_ExportSnapshot(t *testing.T) {
	repo := &recordingRepo{}
	exporter := NewSnapshotExporter(repo)

	require.NoError(t, exporter.ExportSnapshot(context.Background(), sampleSnapshot()))

	assert.Equal(t, [][]interface{}{{"2026-03-01 20:00", "RC", 1000.0, 500.0, 500.0, 14}}, repo.appended[stockRange])
	require.Len(t, repo.appended[duesRange], 2)
	assert.Equal(t, []interface{}{"2026-03-01 20:00", "CLIENT", "Ravi", "150000", "80000", "70000", 2}, repo.appended[duesRange][0])
	assert.Equal(t, "VENDOR", repo.appended[duesRange][1][1])
}

func TestSnapshotExporter_PropagatesErrors(t *testing.T) {
	repo := &recordingRepo{failOn: duesRange}
	err := NewSnapshotExporter(repo).ExportSnapshot(context.Background(), sampleSnapshot())
	assert.ErrorContains(t, err, "export due rows")
}
