package usecase

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
)

const (
	recentOrdersLimit = 5
	recentCropsLimit  = 4
)

type AnalyticsUseCase struct {
	orderRepo repository.OrderRepository
	cropRepo  repository.CropRepository
	poolRepo  repository.PoolRepository
	catalog   *CatalogUseCase
	archiver  ReportArchiver
	now       func() time.Time
}

// NewAnalyticsUseCase builds the aggregators. archiver may be nil, in which
// case exports are not archived.
func NewAnalyticsUseCase(
	orderRepo repository.OrderRepository,
	cropRepo repository.CropRepository,
	poolRepo repository.PoolRepository,
	catalog *CatalogUseCase,
	archiver ReportArchiver,
) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		orderRepo: orderRepo,
		cropRepo:  cropRepo,
		poolRepo:  poolRepo,
		catalog:   catalog,
		archiver:  archiver,
		now:       time.Now,
	}
}

type CropAmount struct {
	Crop   string  `json:"crop"`
	Amount float64 `json:"amount"`
}

type SeasonAmount struct {
	Season entity.Season `json:"season"`
	Amount float64       `json:"amount"`
}

type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type ConsumerSummary struct {
	TotalSpent   float64         `json:"total_spent"`
	TotalOrders  int             `json:"total_orders"`
	AverageOrder float64         `json:"average_order"`
	SpendByCrop  []CropAmount    `json:"spend_by_crop"`
	RecentOrders []*entity.Order `json:"recent_orders"`
	RecentCrops  []CropListing   `json:"recent_crops"`
}

// ConsumerSummary totals the consumer's spend. Cancelled orders are listed
// but not counted.
func (uc *AnalyticsUseCase) ConsumerSummary(ctx context.Context, s Session) (*ConsumerSummary, error) {
	if err := s.RequireConsumer(); err != nil {
		return nil, err
	}

	var (
		orders []*entity.Order
		recent []CropListing
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = uc.orderRepo.ListByConsumer(gctx, s.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = uc.catalog.RecentCrops(gctx, recentCropsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &ConsumerSummary{RecentOrders: newest(orders, recentOrdersLimit), RecentCrops: recent}

	amounts := make([]float64, 0, len(orders))
	byCrop := newCropTotals()
	for _, o := range orders {
		if !o.Counts() {
			continue
		}
		amounts = append(amounts, o.FinalPay)
		byCrop.add(o.CropName, o.FinalPay)
	}

	summary.TotalSpent = entity.Sum(amounts...)
	summary.TotalOrders = len(amounts)
	summary.AverageOrder = entity.Average(summary.TotalSpent, summary.TotalOrders)
	summary.SpendByCrop = byCrop.sorted()
	return summary, nil
}

type FarmerSummary struct {
	TotalIncome  float64         `json:"total_income"`
	TotalSales   int             `json:"total_sales"`
	AverageSale  float64         `json:"average_sale"`
	MonthlySales []MonthAmount   `json:"monthly_sales"`
	TotalCrops   int             `json:"total_crops"`
	PoolMembers  int             `json:"pool_members"`
	Pools        []PoolListing   `json:"pools"`
	RecentOrders []*entity.Order `json:"recent_orders"`
}

// FarmerSummary reports income from orders plus the farmer's lots and pools.
func (uc *AnalyticsUseCase) FarmerSummary(ctx context.Context, s Session) (*FarmerSummary, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}

	var (
		orders []*entity.Order
		crops  []*entity.Crop
		pools  []*entity.Pool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = uc.orderRepo.ListByFarmer(gctx, s.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		crops, err = uc.cropRepo.ListByFarmer(gctx, s.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		pools, err = uc.poolRepo.ListByCreator(gctx, s.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	year := uc.now().Year()
	monthly := newMonthTotals()
	amounts := make([]float64, 0, len(orders))
	for _, o := range orders {
		if !o.Counts() {
			continue
		}
		amounts = append(amounts, o.FinalPay)
		if o.CreatedAt.Year() == year {
			monthly.add(o.CreatedAt.Month(), o.FinalPay)
		}
	}

	contact := uc.catalog.Contact(ctx, s.UserID)
	summary := &FarmerSummary{
		TotalIncome:  entity.Sum(amounts...),
		TotalSales:   len(amounts),
		MonthlySales: monthly.list(),
		TotalCrops:   len(crops),
		Pools:        make([]PoolListing, 0, len(pools)),
		RecentOrders: newest(orders, recentOrdersLimit),
	}
	summary.AverageSale = entity.Average(summary.TotalIncome, summary.TotalSales)
	for _, p := range pools {
		summary.PoolMembers += p.MembersCount
		summary.Pools = append(summary.Pools, poolListing(p, contact))
	}

	return summary, nil
}

type SalesAnalytics struct {
	Year         int            `json:"year"`
	TotalValue   float64        `json:"total_value"`
	TotalLots    int            `json:"total_lots"`
	CropWise     []CropAmount   `json:"crop_wise"`
	Seasonal     []SeasonAmount `json:"seasonal"`
	Monthly      []MonthAmount  `json:"monthly"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// SalesAnalytics values the farmer's listed lots at quantity × base price.
func (uc *AnalyticsUseCase) SalesAnalytics(ctx context.Context, s Session) (*SalesAnalytics, error) {
	if err := s.RequireFarmer(); err != nil {
		return nil, err
	}

	crops, err := uc.cropRepo.ListByFarmer(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	return buildSalesAnalytics(crops, uc.now()), nil
}

func buildSalesAnalytics(crops []*entity.Crop, now time.Time) *SalesAnalytics {
	byCrop := newCropTotals()
	bySeason := make(map[entity.Season][]float64)
	monthly := newMonthTotals()
	values := make([]float64, 0, len(crops))

	for _, c := range crops {
		v := c.ListingValue()
		values = append(values, v)
		byCrop.add(c.CropType, v)
		bySeason[c.Season] = append(bySeason[c.Season], v)
		if c.CreatedAt.Year() == now.Year() {
			monthly.add(c.CreatedAt.Month(), v)
		}
	}

	seasonal := make([]SeasonAmount, 0, len(entity.Seasons))
	for _, season := range entity.Seasons {
		seasonal = append(seasonal, SeasonAmount{Season: season, Amount: entity.Sum(bySeason[season]...)})
	}

	return &SalesAnalytics{
		Year:        now.Year(),
		TotalValue:  entity.Sum(values...),
		TotalLots:   len(crops),
		CropWise:    byCrop.sorted(),
		Seasonal:    seasonal,
		Monthly:     monthly.list(),
		GeneratedAt: now,
	}
}

type Export struct {
	Filename string
	Data     []byte
	// Object is the archived copy, empty when archiving is off or failed.
	Object string
}

// ExportSalesAnalytics renders SalesAnalytics as an XLSX workbook.
func (uc *AnalyticsUseCase) ExportSalesAnalytics(ctx context.Context, s Session) (*Export, error) {
	analytics, err := uc.SalesAnalytics(ctx, s)
	if err != nil {
		return nil, err
	}

	data, err := SalesWorkbook(analytics)
	if err != nil {
		return nil, errors.Internal("Failed to build report", err)
	}

	export := &Export{
		Filename: "sales-" + analytics.GeneratedAt.Format("2006-01-02") + ".xlsx",
		Data:     data,
	}
	if uc.archiver != nil {
		object, err := uc.archiver.UploadReport(ctx, s.UserID, bytes.NewReader(data))
		if err != nil {
			logger.Warn("failed to archive sales report for %s: %v", s.UserID, err)
		} else {
			export.Object = object
		}
	}
	return export, nil
}

// SalesWorkbook writes Summary, Crops, Seasons and Months sheets.
func SalesWorkbook(a *SalesAnalytics) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, err
	}
	summary := [][]interface{}{
		{"Generated", a.GeneratedAt.Format(time.RFC3339)},
		{"Year", a.Year},
		{"Lots", a.TotalLots},
		{"Total value (INR)", a.TotalValue},
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		return nil, err
	}

	crops := [][]interface{}{{"Crop", "Value (INR)"}}
	for _, c := range a.CropWise {
		crops = append(crops, []interface{}{c.Crop, c.Amount})
	}
	seasons := [][]interface{}{{"Season", "Value (INR)"}}
	for _, s := range a.Seasonal {
		seasons = append(seasons, []interface{}{string(s.Season), s.Amount})
	}
	months := [][]interface{}{{"Month", "Value (INR)"}}
	for _, m := range a.Monthly {
		months = append(months, []interface{}{m.Month, m.Amount})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{"Crops", crops},
		{"Seasons", seasons},
		{"Months", months},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

type cropTotals struct {
	order  []string
	values map[string][]float64
}

func newCropTotals() *cropTotals {
	return &cropTotals{values: make(map[string][]float64)}
}

func (t *cropTotals) add(crop string, amount float64) {
	if _, ok := t.values[crop]; !ok {
		t.order = append(t.order, crop)
	}
	t.values[crop] = append(t.values[crop], amount)
}

// sorted lists crops by amount, largest first.
func (t *cropTotals) sorted() []CropAmount {
	out := make([]CropAmount, 0, len(t.order))
	for _, crop := range t.order {
		out = append(out, CropAmount{Crop: crop, Amount: entity.Sum(t.values[crop]...)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

type monthTotals [12][]float64

func newMonthTotals() *monthTotals {
	return &monthTotals{}
}

func (m *monthTotals) add(month time.Month, amount float64) {
	m[month-1] = append(m[month-1], amount)
}

func (m *monthTotals) list() []MonthAmount {
	out := make([]MonthAmount, 0, 12)
	for i := range m {
		out = append(out, MonthAmount{
			Month:  time.Month(i + 1).String()[:3],
			Amount: entity.Sum(m[i]...),
		})
	}
	return out
}

// newest returns up to n orders by creation time, newest first.
func newest(orders []*entity.Order, n int) []*entity.Order {
	sorted := make([]*entity.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
