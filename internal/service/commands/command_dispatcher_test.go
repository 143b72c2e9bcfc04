package commands

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/domain/pricing"
	"github.com/mamadbah2/fishledger/internal/repository/memory"
	"github.com/mamadbah2/fishledger/internal/service/dues"
	"github.com/mamadbah2/fishledger/internal/service/stock"
)

func newDispatcher(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	records := []models.LoadingRecord{
		{ID: "1", BillNo: "F-1", Category: models.CategoryFarmerIntake, PartyName: "Suresh",
			Lines: []models.LineItem{{VarietyCode: "RC", TotalKgs: 700}}, GrandTotal: decimal.NewFromInt(40000)},
		{ID: "2", BillNo: "D-1", Category: models.CategoryClientDispatch, PartyName: "Ravi",
			Lines: []models.LineItem{{VarietyCode: "RC", TotalKgs: 200}}, GrandTotal: decimal.NewFromInt(100000)},
		{ID: "3", BillNo: "D-2", Category: models.CategoryClientDispatch, PartyName: "Ravi Kumar",
			Lines: []models.LineItem{{VarietyCode: "RC", TotalKgs: 100}}, GrandTotal: decimal.NewFromInt(5000)},
	}
	for i := range records {
		require.NoError(t, store.InsertLoading(ctx, &records[i]))
	}
	require.NoError(t, store.InsertPayment(ctx, &models.Payment{
		ID: "p1", PartyName: "Ravi", PartyKind: models.PartyClient, Amount: decimal.NewFromInt(30000), Mode: models.ModeCash,
	}))

	return NewService(stock.NewService(store, pricing.DefaultPolicy(), nil), dues.NewService(store, nil), nil)
}

func TestHandleCommand(t *testing.T) {
	svc := newDispatcher(t)

	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"stock of one variety", "stock rc", []string{"RC: 400 kg net (11 trays). In 700 kg, out 300 kg."}},
		{"all stock", "/stock", []string{"Stock:", "- RC: 400 kg net"}},
		{"client due", "due Ravi", []string{"Ravi (client): billed 100000, paid 30000, due 70000."}},
		{"multi word name", "DUE Ravi Kumar", []string{"Ravi Kumar (client): billed 5000"}},
		{"vendor due", "due vendor Suresh", []string{"Suresh (vendor): billed 40000, paid 0, due 40000."}},
		{"pending both", "pending", []string{"Client dues:\n- Ravi: 70000\n- Ravi Kumar: 5000", "Vendor dues:\n- Suresh: 40000"}},
		{"pending vendors", "pending vendors", []string{"Vendor dues:"}},
		{"help", "help", []string{"stock [CODE]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := svc.HandleCommand(context.Background(), models.ParseCommand(tt.message), "+911234")
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, reply, want)
			}
		})
	}
}

func TestHandleCommand_Errors(t *testing.T) {
	svc := newDispatcher(t)

	_, err := svc.HandleCommand(context.Background(), models.ParseCommand("due"), "")
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("pending brokers"), "")
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("eggs 12"), "")
	assert.ErrorIs(t, err, ErrUnsupportedCommand)

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("stock  "), "")
	assert.NoError(t, err)
}

func TestParseParty(t *testing.T) {
	kind, name := parseParty([]string{"client"})
	assert.Equal(t, models.PartyClient, kind)
	assert.Equal(t, "client", name)

	kind, name = parseParty([]string{"Vendor", "Mani", "Raj"})
	assert.Equal(t, models.PartyVendor, kind)
	assert.Equal(t, "Mani Raj", name)

	kind, name = parseParty([]string{"Farmer", "Joe"})
	assert.Equal(t, models.PartyClient, kind)
	assert.Equal(t, "Farmer Joe", name)

	kind, name = parseParty([]string{"Agent", "Smith"})
	assert.Equal(t, models.PartyClient, kind)
	assert.Equal(t, "Agent Smith", name)

	kind, name = parseParty([]string{"client", "Agent", "Smith"})
	assert.Equal(t, models.PartyClient, kind)
	assert.Equal(t, "Agent Smith", name)
}
