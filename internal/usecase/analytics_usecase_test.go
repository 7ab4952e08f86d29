package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"agrimarket/internal/domain/entity"
	"agrimarket/pkg/errors"
)

func newAnalytics(m *market, archiver ReportArchiver) *AnalyticsUseCase {
	uc := NewAnalyticsUseCase(m.orders, m.crops, m.pools, m.catalog, archiver)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func seedOrders(m *market) {
	orders := []*entity.Order{
		{ID: "o1", CropName: "Wheat", FinalPay: 550, FarmerID: "farmer-1", ConsumerID: "consumer-1", Status: entity.OrderDelivered, CreatedAt: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "o2", CropName: "Onion", FinalPay: 350, FarmerID: "farmer-1", ConsumerID: "consumer-1", Status: entity.OrderProcessing, CreatedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "o3", CropName: "Wheat", FinalPay: 250, FarmerID: "farmer-1", ConsumerID: "consumer-1", Status: entity.OrderInDelivery, CreatedAt: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "o4", CropName: "Rice", FinalPay: 999, FarmerID: "farmer-1", ConsumerID: "consumer-1", Status: entity.OrderCancelled, CreatedAt: time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "o5", CropName: "Rice", FinalPay: 100, FarmerID: "farmer-1", ConsumerID: "consumer-2", Status: entity.OrderDelivered, CreatedAt: time.Date(2023, time.March, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, o := range orders {
		m.orders.orders[o.ID] = o
	}
}

func TestConsumerSummary(t *testing.T) {
	m := newMarket("")
	seedOrders(m)
	m.addCrop("crop-1", 10, 100)
	uc := newAnalytics(m, nil)

	summary, err := uc.ConsumerSummary(context.Background(), consumerSession("consumer-1"))
	require.NoError(t, err)

	assert.Equal(t, 1150.0, summary.TotalSpent)
	assert.Equal(t, 3, summary.TotalOrders)
	assert.Equal(t, 383.33, summary.AverageOrder)
	if diff := cmp.Diff([]CropAmount{{"Wheat", 800}, {"Onion", 350}}, summary.SpendByCrop); diff != "" {
		t.Errorf("spend by crop mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, summary.RecentOrders, 4)
	assert.Equal(t, "o4", summary.RecentOrders[0].ID)
	assert.Len(t, summary.RecentCrops, 1)

	_, err = uc.ConsumerSummary(context.Background(), farmerSession("farmer-1"))
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestFarmerSummary(t *testing.T) {
	m := newMarket("")
	seedOrders(m)
	m.addCrop("crop-1", 10, 100)
	m.pools.pools["pool-1"] = &entity.Pool{
		ID: "pool-1", CropType: "Onion", Price: 20, TargetQuantity: 100,
		CurrentQuantity: 75, MembersCount: 3, Status: entity.PoolStatusActive, CreatedBy: "farmer-1",
	}
	uc := newAnalytics(m, nil)

	summary, err := uc.FarmerSummary(context.Background(), farmerSession("farmer-1"))
	require.NoError(t, err)

	assert.Equal(t, 1250.0, summary.TotalIncome)
	assert.Equal(t, 4, summary.TotalSales)
	assert.Equal(t, 312.5, summary.AverageSale)
	assert.Equal(t, 1, summary.TotalCrops)
	assert.Equal(t, 3, summary.PoolMembers)
	require.Len(t, summary.Pools, 1)
	assert.Equal(t, 75, summary.Pools[0].FillPercentage)

	require.Len(t, summary.MonthlySales, 12)
	assert.Equal(t, MonthAmount{"Jan", 550}, summary.MonthlySales[0])
	assert.Equal(t, MonthAmount{"Mar", 600}, summary.MonthlySales[2])
	assert.Len(t, summary.RecentOrders, 5)
}

func TestSalesAnalytics(t *testing.T) {
	crops := []*entity.Crop{
		{CropType: "Wheat", Season: entity.SeasonRabi, Quantity: 10, BasePrice: 100, CreatedAt: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{CropType: "Rice", Season: entity.SeasonKharif, Quantity: 4, BasePrice: 50.5, CreatedAt: time.Date(2024, time.February, 9, 0, 0, 0, 0, time.UTC)},
		{CropType: "Wheat", Season: entity.SeasonRabi, Quantity: 2, BasePrice: 110, CreatedAt: time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)},
	}

	a := buildSalesAnalytics(crops, fixedNow)

	assert.Equal(t, 1422.0, a.TotalValue)
	assert.Equal(t, 3, a.TotalLots)
	assert.Equal(t, []CropAmount{{"Wheat", 1220}, {"Rice", 202}}, a.CropWise)
	assert.Equal(t, []SeasonAmount{
		{entity.SeasonKharif, 202},
		{entity.SeasonRabi, 1220},
		{entity.SeasonSummer, 0},
	}, a.Seasonal)
	assert.Equal(t, 1202.0, a.Monthly[1].Amount)
	assert.Zero(t, a.Monthly[6].Amount)
}

func TestExportSalesAnalytics(t *testing.T) {
	m := newMarket("")
	m.addCrop("crop-1", 10, 100)
	archiver := &memArchiver{}
	uc := newAnalytics(m, archiver)

	export, err := uc.ExportSalesAnalytics(context.Background(), farmerSession("farmer-1"))
	require.NoError(t, err)
	assert.Equal(t, "sales-2024-03-15.xlsx", export.Filename)
	assert.Equal(t, "gs://reports/farmer-1.xlsx", export.Object)
	assert.Equal(t, export.Data, archiver.objects[export.Object])

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Crops", "Seasons", "Months"}, f.GetSheetList())

	rows, err := f.GetRows("Crops")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Crop", "Value (INR)"}, {"Wheat", "1000"}}, rows)

	months, err := f.GetRows("Months")
	require.NoError(t, err)
	assert.Len(t, months, 13)
}
