package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket/internal/domain/entity"
	"agrimarket/pkg/config"
	"agrimarket/pkg/errors"
)

func TestAddLine_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *market)
		s     Session
		input AddLineInput
		code  string
		field string
	}{
		{
			name:  "anonymous",
			s:     Session{},
			input: AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 1},
			code:  errors.CodeUnauthorized,
		},
		{
			name:  "farmer",
			s:     farmerSession("farmer-1"),
			input: AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 1},
			code:  errors.CodeForbidden,
		},
		{
			name:  "zero quantity",
			s:     consumerSession("consumer-1"),
			input: AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 0},
			code:  errors.CodeValidation,
			field: "quantity",
		},
		{
			name:  "over available",
			s:     consumerSession("consumer-1"),
			input: AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 11},
			code:  errors.CodeValidation,
			field: "quantity",
		},
		{
			name:  "bad source type",
			s:     consumerSession("consumer-1"),
			input: AddLineInput{SourceType: "bundle", SourceID: "crop-1", Quantity: 1},
			code:  errors.CodeValidation,
			field: "source_type",
		},
		{
			name:  "unknown crop",
			s:     consumerSession("consumer-1"),
			input: AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-404", Quantity: 1},
			code:  errors.CodeNotFound,
		},
		{
			name: "farmer without payment id",
			setup: func(m *market) {
				m.users.users["farmer-1"].PaymentID = ""
			},
			s:     consumerSession("consumer-1"),
			input: AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 1},
			code:  errors.CodeValidation,
			field: "farmer_payment_id",
		},
		{
			name: "farmer with malformed payment id",
			setup: func(m *market) {
				m.users.users["farmer-1"].PaymentID = "ravi-upi"
			},
			s:     consumerSession("consumer-1"),
			input: AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 1},
			code:  errors.CodeValidation,
			field: "farmer_payment_id",
		},
		{
			name: "lot without farmer",
			setup: func(m *market) {
				m.crops.crops["crop-1"].FarmerID = ""
			},
			s:     consumerSession("consumer-1"),
			input: AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 1},
			code:  errors.CodeValidation,
			field: "farmer_id",
		},
		{
			name: "closed pool",
			setup: func(m *market) {
				m.pools.pools["pool-1"] = &entity.Pool{
					ID: "pool-1", CropType: "Onion", Price: 20, TargetQuantity: 10,
					CurrentQuantity: 10, Status: entity.PoolStatusClosed, CreatedBy: "farmer-1",
				}
			},
			s:     consumerSession("consumer-1"),
			input: AddLineInput{SourceType: entity.SourcePool, SourceID: "pool-1", Quantity: 1},
			code:  errors.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMarket(config.SweepContinue)
			m.addCrop("crop-1", 10, 100)
			if tt.setup != nil {
				tt.setup(m)
			}

			_, err := m.carts.AddLine(context.Background(), tt.s, tt.input)
			require.Error(t, err)
			appErr := errors.As(err)
			assert.Equal(t, tt.code, appErr.Code)
			if tt.field != "" {
				assert.Equal(t, tt.field, appErr.Field)
			}
			assert.Equal(t, 0, m.cart.count(tt.s.UserID))
		})
	}
}

func TestAddLine_SnapshotAndOverwrite(t *testing.T) {
	m := newMarket(config.SweepContinue)
	m.addCrop("crop-1", 10, 100)
	ctx := context.Background()
	consumer := consumerSession("consumer-1")

	first, err := m.carts.AddLine(ctx, consumer, AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", first.FarmerName)
	assert.Equal(t, "ravi@upi", first.FarmerPaymentID)
	assert.Equal(t, fixedNow, first.SnapshotAt)
	assert.NotEmpty(t, first.Token)

	second, err := m.carts.AddLine(ctx, consumer, AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 3})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	view, err := m.carts.ListLines(ctx, consumer)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.Equal(t, 300.0, view.Subtotal)
	assert.Equal(t, 450.0, view.Total)
}

func TestListLines_FlagsOutdatedContact(t *testing.T) {
	m := newMarket(config.SweepContinue)
	m.addCrop("crop-1", 10, 100)
	ctx := context.Background()
	consumer := consumerSession("consumer-1")

	_, err := m.carts.AddLine(ctx, consumer, AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 1})
	require.NoError(t, err)

	view, err := m.carts.ListLines(ctx, consumer)
	require.NoError(t, err)
	assert.False(t, view.Lines[0].ContactMayBeOutdated)
	assert.Equal(t, 250.0, view.Lines[0].FinalPay)

	m.users.users["farmer-1"].UpdatedAt = fixedNow.Add(time.Hour)

	view, err = m.carts.ListLines(ctx, consumer)
	require.NoError(t, err)
	assert.True(t, view.Lines[0].ContactMayBeOutdated)
}

func TestListLines_Anonymous(t *testing.T) {
	m := newMarket(config.SweepContinue)

	view, err := m.carts.ListLines(context.Background(), Session{})
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Zero(t, view.Total)
}

func TestRemoveLine(t *testing.T) {
	m := newMarket(config.SweepContinue)
	m.addCrop("crop-1", 10, 100)
	ctx := context.Background()
	consumer := consumerSession("consumer-1")

	_, err := m.carts.AddLine(ctx, consumer, AddLineInput{SourceType: entity.SourceCrop, SourceID: "crop-1", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, m.carts.RemoveLine(ctx, consumer, "crop-1"))
	assert.Equal(t, 0, m.cart.count("consumer-1"))

	err = m.carts.RemoveLine(ctx, Session{}, "crop-1")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}
