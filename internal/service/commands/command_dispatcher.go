package commands

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the commands operators can send.
const HelpText = "Commands:\n" +
	"stock [CODE] - net stock of one variety, or all\n" +
	"due [client|vendor] <name> - balance of a party, clients by default\n" +
	"pending [clients|vendors] - outstanding dues\n" +
	"help - this message"

// StockLedger is the stock side used to answer queries.
type StockLedger interface {
	NetStock(ctx context.Context, variety string) (models.StockPosition, error)
	Positions(ctx context.Context) ([]models.StockPosition, error)
}

// DueLedger is the dues side used to answer queries.
type DueLedger interface {
	Account(ctx context.Context, name string, kind models.PartyKind) (models.DueAccount, error)
	PendingAccounts(ctx context.Context, kind models.PartyKind) ([]models.DueAccount, error)
}

// Dispatcher answers parsed operator commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface on top of the ledgers.
type Service struct {
	stock  StockLedger
	dues   DueLedger
	logger *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(stock StockLedger, dues DueLedger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stock: stock, dues: dues, logger: logger}
}

// HandleCommand answers the command from the current ledgers.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandStock:
		if len(cmd.Args) == 0 {
			positions, err := s.stock.Positions(ctx)
			if err != nil {
				return "", err
			}
			return reporting.FormatPositions(positions), nil
		}
		pos, err := s.stock.NetStock(ctx, cmd.Args[0])
		if err != nil {
			return "", err
		}
		return reporting.FormatPosition(pos), nil
	case models.CommandDue:
		kind, name := parseParty(cmd.Args)
		if name == "" {
			return "", ErrInvalidArguments
		}
		acc, err := s.dues.Account(ctx, name, kind)
		if err != nil {
			return "", err
		}
		return reporting.FormatAccount(acc), nil
	case models.CommandPending:
		kinds := []models.PartyKind{models.PartyClient, models.PartyVendor}
		if len(cmd.Args) > 0 {
			kind, ok := parseKind(cmd.Args[0])
			if !ok {
				return "", ErrInvalidArguments
			}
			kinds = []models.PartyKind{kind}
		}
		sections := make([]string, 0, len(kinds))
		for _, kind := range kinds {
			accounts, err := s.dues.PendingAccounts(ctx, kind)
			if err != nil {
				return "", err
			}
			sections = append(sections, reporting.FormatPending(kind, accounts))
		}
		return strings.Join(sections, "\n\n"), nil
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// parseParty reads "[client|vendor] <name...>". Clients are the default side.
// Only the exact keywords select a side, so "Farmer Joe" stays a name.
func parseParty(args []string) (models.PartyKind, string) {
	kind := models.PartyClient
	if len(args) > 1 {
		switch strings.ToLower(args[0]) {
		case "client":
			args = args[1:]
		case "vendor":
			kind = models.PartyVendor
			args = args[1:]
		}
	}
	return kind, strings.Join(args, " ")
}

func parseKind(arg string) (models.PartyKind, bool) {
	switch strings.ToLower(arg) {
	case "client", "clients":
		return models.PartyClient, true
	case "vendor", "vendors", "farmer", "farmers", "agent", "agents":
		return models.PartyVendor, true
	}
	return "", false
}
