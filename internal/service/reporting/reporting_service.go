package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/repository"
)

const dateLayout = "2006-01-02"

// StockSource supplies current stock positions.
type StockSource interface {
	Positions(ctx context.Context) ([]models.StockPosition, error)
}

// DueSource supplies outstanding dues per side.
type DueSource interface {
	PendingAccounts(ctx context.Context, kind models.PartyKind) ([]models.DueAccount, error)
}

// Exporter publishes a snapshot outside the service, e.g. to a spreadsheet.
type Exporter interface {
	ExportSnapshot(ctx context.Context, snapshot models.LedgerSnapshot) error
}

// Service builds ledger snapshots and the text summaries sent over WhatsApp.
type Service struct {
	stock     StockSource
	dues      DueSource
	snapshots repository.SnapshotRepository
	exporter  Exporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new reporting service instance. exporter may be nil.
func NewService(stock StockSource, dues DueSource, snapshots repository.SnapshotRepository, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stock:     stock,
		dues:      dues,
		snapshots: snapshots,
		exporter:  exporter,
		logger:    logger,
		now:       time.Now,
	}
}

// BuildSnapshot computes stock and pending dues as of now.
func (s *Service) BuildSnapshot(ctx context.Context) (models.LedgerSnapshot, error) {
	positions, err := s.stock.Positions(ctx)
	if err != nil {
		return models.LedgerSnapshot{}, fmt.Errorf("load stock positions: %w", err)
	}
	clients, err := s.dues.PendingAccounts(ctx, models.PartyClient)
	if err != nil {
		return models.LedgerSnapshot{}, fmt.Errorf("load client dues: %w", err)
	}
	vendors, err := s.dues.PendingAccounts(ctx, models.PartyVendor)
	if err != nil {
		return models.LedgerSnapshot{}, fmt.Errorf("load vendor dues: %w", err)
	}

	return models.LedgerSnapshot{
		TakenAt:        s.now().UTC(),
		Stock:          positions,
		PendingClients: clients,
		PendingVendors: vendors,
	}, nil
}

// TakeSnapshot builds a snapshot, stores it and hands it to the exporter.
// The stored snapshot is kept even when the export fails.
func (s *Service) TakeSnapshot(ctx context.Context) (models.LedgerSnapshot, error) {
	snapshot, err := s.BuildSnapshot(ctx)
	if err != nil {
		return models.LedgerSnapshot{}, err
	}

	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return models.LedgerSnapshot{}, models.WrapPersistence("save snapshot", err)
	}

	if s.exporter != nil {
		if err := s.exporter.ExportSnapshot(ctx, snapshot); err != nil {
			s.logger.Warn("snapshot export failed", zap.Error(err))
			return snapshot, fmt.Errorf("export snapshot: %w", err)
		}
	}

	s.logger.Info("ledger snapshot taken",
		zap.Int("varieties", len(snapshot.Stock)),
		zap.Int("pending_clients", len(snapshot.PendingClients)),
		zap.Int("pending_vendors", len(snapshot.PendingVendors)))
	return snapshot, nil
}

// GenerateWeeklyReport renders the weekly digest for the manager.
func (s *Service) GenerateWeeklyReport(ctx context.Context, now time.Time) (string, error) {
	snapshot, err := s.BuildSnapshot(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly ledger digest (%s)\n\n", now.Format(dateLayout))
	b.WriteString(FormatPositions(snapshot.Stock))
	b.WriteString("\n\n")
	b.WriteString(FormatPending(models.PartyClient, snapshot.PendingClients))
	b.WriteString("\n\n")
	b.WriteString(FormatPending(models.PartyVendor, snapshot.PendingVendors))
	return b.String(), nil
}

// FormatPosition renders one variety's stock.
func FormatPosition(p models.StockPosition) string {
	return fmt.Sprintf("%s: %s kg net (%d trays). In %s kg, out %s kg.",
		p.VarietyCode, kgs(p.NetKgs), p.NetTrays, kgs(p.IntakeKgs), kgs(p.DispatchedKgs))
}

// FormatPositions renders every variety's stock.
func FormatPositions(positions []models.StockPosition) string {
	if len(positions) == 0 {
		return "Stock: no loadings recorded yet."
	}
	lines := make([]string, 0, len(positions)+1)
	lines = append(lines, "Stock:")
	for _, p := range positions {
		lines = append(lines, "- "+FormatPosition(p))
	}
	return strings.Join(lines, "\n")
}

// FormatAccount renders a party balance.
func FormatAccount(a models.DueAccount) string {
	msg := fmt.Sprintf("%s (%s): billed %s, paid %s, due %s.",
		a.PartyName, strings.ToLower(string(a.PartyKind)),
		a.TotalBilled.StringFixed(0), a.TotalPaid.StringFixed(0), a.Due.StringFixed(0))
	if a.Overpaid.IsPositive() {
		msg += fmt.Sprintf(" Overpaid by %s.", a.Overpaid.StringFixed(0))
	}
	return msg
}

// FormatPending renders the outstanding dues of one side.
func FormatPending(kind models.PartyKind, accounts []models.DueAccount) string {
	title := "Client dues"
	if kind == models.PartyVendor {
		title = "Vendor dues"
	}
	if len(accounts) == 0 {
		return title + ": nothing pending."
	}
	lines := make([]string, 0, len(accounts)+1)
	lines = append(lines, title+":")
	for _, a := range accounts {
		lines = append(lines, fmt.Sprintf("- %s: %s", a.PartyName, a.Due.StringFixed(0)))
	}
	return strings.Join(lines, "\n")
}

func kgs(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
