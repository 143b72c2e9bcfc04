package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/repository/memory"
)

type stubStock struct {
	positions []models.StockPosition
	err       error
}

func (s stubStock) Positions(context.Context) ([]models.StockPosition, error) {
	return s.positions, s.err
}

type stubDues map[models.PartyKind][]models.DueAccount

func (s stubDues) PendingAccounts(_ context.Context, kind models.PartyKind) ([]models.DueAccount, error) {
	return s[kind], nil
}

type recordingExporter struct {
	got []models.LedgerSnapshot
	err error
}

func (e *recordingExporter) ExportSnapshot(_ context.Context, snapshot models.LedgerSnapshot) error {
	e.got = append(e.got, snapshot)
	return e.err
}

var taken = time.Date(2024, 6, 7, 15, 30, 0, 0, time.UTC)

func fixtures() (stubStock, stubDues) {
	stock := stubStock{positions: []models.StockPosition{
		{VarietyCode: "CT", IntakeKgs: 350, NetKgs: 350, NetTrays: 10},
		{VarietyCode: "RC", IntakeKgs: 1000, DispatchedKgs: 487.5, NetKgs: 512.5, NetTrays: 14},
	}}
	dues := stubDues{
		models.PartyClient: {{PartyName: "Ravi", PartyKind: models.PartyClient, Due: decimal.NewFromInt(70000)}},
	}
	return stock, dues
}

func TestTakeSnapshot(t *testing.T) {
	stock, dues := fixtures()
	store := memory.NewStore()
	exporter := &recordingExporter{}

	svc := NewService(stock, dues, store, exporter, nil)
	svc.now = func() time.Time { return taken }

	snap, err := svc.TakeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, taken, snap.TakenAt)
	assert.Len(t, snap.Stock, 2)
	assert.Len(t, snap.PendingClients, 1)
	assert.Empty(t, snap.PendingVendors)

	require.Len(t, store.Snapshots(), 1)
	require.Len(t, exporter.got, 1)
	assert.Equal(t, snap, exporter.got[0])
}

func TestTakeSnapshot_ExportFailureKeepsStoredSnapshot(t *testing.T) {
	stock, dues := fixtures()
	store := memory.NewStore()
	exporter := &recordingExporter{err: errors.New("quota exceeded")}

	svc := NewService(stock, dues, store, exporter, nil)
	_, err := svc.TakeSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Len(t, store.Snapshots(), 1)
}

func TestTakeSnapshot_WithoutExporter(t *testing.T) {
	stock, dues := fixtures()
	store := memory.NewStore()

	svc := NewService(stock, dues, store, nil, nil)
	_, err := svc.TakeSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.Snapshots(), 1)
}

func TestBuildSnapshot_SourceFailure(t *testing.T) {
	_, dues := fixtures()
	svc := NewService(stubStock{err: errors.New("boom")}, dues, memory.NewStore(), nil, nil)

	_, err := svc.BuildSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load stock positions")
}

func TestGenerateWeeklyReport(t *testing.T) {
	stock, dues := fixtures()
	svc := NewService(stock, dues, memory.NewStore(), nil, nil)

	report, err := svc.GenerateWeeklyReport(context.Background(), taken)
	require.NoError(t, err)
	assert.Contains(t, report, "Weekly ledger digest (2024-06-07)")
	assert.Contains(t, report, "- RC: 512.5 kg net (14 trays). In 1000 kg, out 487.5 kg.")
	assert.Contains(t, report, "Client dues:\n- Ravi: 70000")
	assert.Contains(t, report, "Vendor dues: nothing pending.")
}

func TestFormatAccount(t *testing.T) {
	acc := models.DueAccount{
		PartyName:   "Ravi",
		PartyKind:   models.PartyClient,
		TotalBilled: decimal.NewFromInt(150000),
		TotalPaid:   decimal.NewFromInt(170000),
		Due:         decimal.Zero,
		Overpaid:    decimal.NewFromInt(20000),
	}
	assert.Equal(t, "Ravi (client): billed 150000, paid 170000, due 0. Overpaid by 20000.", FormatAccount(acc))
	assert.Equal(t, "Stock: no loadings recorded yet.", FormatPositions(nil))
}
