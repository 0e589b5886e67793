package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnassignedMaster is the master name reported for orders without a master
const UnassignedMaster = "Unassigned"

// commonProblemLimit is the number of problem fragments kept per device type
const commonProblemLimit = 5

// ReportQuery selects the orders a report aggregates
type ReportQuery struct {
	Start    *time.Time
	End      *time.Time
	StatusID models.StatusID // sales report only
	RawStart string
	RawEnd   string
}

// Markers echoed in Period when a bound was not requested
const (
	PeriodOpenStart = "start"
	PeriodOpenEnd   = "end"
)

// Period echoes the requested range
type Period struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ServiceStat is the per-service line of the sales report
type ServiceStat struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesReport summarizes orders and revenue
type SalesReport struct {
	Period          Period                     `json:"period"`
	TotalOrders     int                        `json:"totalOrders"`
	TotalRevenue    decimal.Decimal            `json:"totalRevenue"`
	OrdersByStatus  map[string]int             `json:"ordersByStatus"`
	PopularServices map[string]ServiceStat     `json:"popularServices"`
	RevenueByMonth  map[string]decimal.Decimal `json:"revenueByMonth"`
}

// MasterStat is one row of the masters report
type MasterStat struct {
	MasterID              *uint           `json:"masterId"`
	MasterName            string          `json:"masterName"`
	TotalOrders           int             `json:"totalOrders"`
	CompletedOrders       int             `json:"completedOrders"`
	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
	AverageCompletionTime int64           `json:"averageCompletionTime"` // whole days
	CompletionRate        string          `json:"completionRate"`
}

// ProblemCount is a problem fragment and how often it occurs
type ProblemCount struct {
	Problem string `json:"problem"`
	Count   int    `json:"count"`
}

// DeviceTypeStat is one row of the device-types report
type DeviceTypeStat struct {
	TypeID          uint            `json:"typeId"`
	TypeName        string          `json:"typeName"`
	TotalOrders     int             `json:"totalOrders"`
	CompletedOrders int             `json:"completedOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	CommonProblems  []ProblemCount  `json:"commonProblems"`
}

// ReportService loads orders and aggregates them in-process
type ReportService struct {
	db *gorm.DB
}

// NewReportService creates a ReportService
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) loadOrders(ctx context.Context, q ReportQuery, statuses ...models.StatusID) ([]models.RepairOrder, error) {
	query := s.db.WithContext(ctx).
		Preload("Status").
		Preload("Master", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("Services.Service").
		Preload("Device.Type")
	if q.Start != nil {
		query = query.Where("date_created >= ?", *q.Start)
	}
	if q.End != nil {
		query = query.Where("date_created <= ?", *q.End)
	}
	if len(statuses) > 0 {
		query = query.Where("status_id IN ?", statuses)
	}

	var orders []models.RepairOrder
	if err := query.Order("date_created DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, utils.NewInternalError("Failed to load orders for report", err)
	}
	return orders, nil
}

// Sales builds the sales report
func (s *ReportService) Sales(ctx context.Context, q ReportQuery) (*SalesReport, error) {
	var statuses []models.StatusID
	if q.StatusID != 0 {
		statuses = append(statuses, q.StatusID)
	}
	orders, err := s.loadOrders(ctx, q, statuses...)
	if err != nil {
		return nil, err
	}
	report := BuildSalesReport(orders)
	report.Period = Period{StartDate: q.RawStart, EndDate: q.RawEnd}
	if report.Period.StartDate == "" {
		report.Period.StartDate = PeriodOpenStart
	}
	if report.Period.EndDate == "" {
		report.Period.EndDate = PeriodOpenEnd
	}
	return report, nil
}

// Masters builds the masters report over orders in repair or completed
func (s *ReportService) Masters(ctx context.Context, q ReportQuery) ([]MasterStat, error) {
	orders, err := s.loadOrders(ctx, q, models.StatusInRepair, models.StatusReady, models.StatusIssued)
	if err != nil {
		return nil, err
	}
	return BuildMasterReport(orders), nil
}

// DeviceTypes builds the device-types report
func (s *ReportService) DeviceTypes(ctx context.Context, q ReportQuery) ([]DeviceTypeStat, error) {
	orders, err := s.loadOrders(ctx, q)
	if err != nil {
		return nil, err
	}
	return BuildDeviceTypeReport(orders), nil
}

func finalCost(o *models.RepairOrder) decimal.Decimal {
	if o.FinalCost.Valid {
		return o.FinalCost.Decimal
	}
	return decimal.Zero
}

func statusName(o *models.RepairOrder) string {
	if o.Status != nil && o.Status.Name != "" {
		return o.Status.Name
	}
	return o.StatusID.Name()
}

// BuildSalesReport aggregates orders into a sales report
func BuildSalesReport(orders []models.RepairOrder) *SalesReport {
	report := &SalesReport{
		TotalOrders:     len(orders),
		TotalRevenue:    decimal.Zero,
		OrdersByStatus:  map[string]int{},
		PopularServices: map[string]ServiceStat{},
		RevenueByMonth:  map[string]decimal.Decimal{},
	}

	for i := range orders {
		o := &orders[i]
		revenue := finalCost(o)
		report.TotalRevenue = report.TotalRevenue.Add(revenue)
		report.OrdersByStatus[statusName(o)]++

		month := o.DateCreated.UTC().Format("2006-01")
		report.RevenueByMonth[month] = report.RevenueByMonth[month].Add(revenue)

		for _, line := range o.Services {
			name := fmt.Sprintf("Service %d", line.ServiceID)
			if line.Service != nil {
				name = line.Service.Name
			}
			stat := report.PopularServices[name]
			stat.Count++
			stat.Revenue = stat.Revenue.Add(line.LineTotal())
			report.PopularServices[name] = stat
		}
	}
	return report
}

// BuildMasterReport groups orders by master. Rows are ordered by master id with unassigned last.
func BuildMasterReport(orders []models.RepairOrder) []MasterStat {
	type acc struct {
		stat          MasterStat
		completedDays float64
		timedOrders   int
	}
	groups := map[uint]*acc{}

	for i := range orders {
		o := &orders[i]
		var key uint
		if o.MasterID != nil {
			key = *o.MasterID
		}

		g, ok := groups[key]
		if !ok {
			name := UnassignedMaster
			var id *uint
			if o.MasterID != nil {
				mid := *o.MasterID
				id = &mid
				if o.Master != nil {
					name = o.Master.Name
				}
			}
			g = &acc{stat: MasterStat{MasterID: id, MasterName: name, TotalRevenue: decimal.Zero}}
			groups[key] = g
		}

		g.stat.TotalOrders++
		g.stat.TotalRevenue = g.stat.TotalRevenue.Add(finalCost(o))
		if o.StatusID.IsCompleted() {
			g.stat.CompletedOrders++
			if o.DateCompleted != nil {
				g.completedDays += o.DateCompleted.Sub(o.DateCreated).Hours() / 24
				g.timedOrders++
			}
		}
	}

	result := make([]MasterStat, 0, len(groups))
	for _, g := range groups {
		if g.timedOrders > 0 {
			g.stat.AverageCompletionTime = int64(math.Round(g.completedDays / float64(g.timedOrders)))
		}
		rate := 0.0
		if g.stat.TotalOrders > 0 {
			rate = float64(g.stat.CompletedOrders) / float64(g.stat.TotalOrders) * 100
		}
		g.stat.CompletionRate = fmt.Sprintf("%.1f", rate)
		result = append(result, g.stat)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].MasterID, result[j].MasterID
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return *a < *b
	})
	return result
}

// BuildDeviceTypeReport groups orders by device type, ordered by type id.
// Orders whose device type is not loaded are skipped.
func BuildDeviceTypeReport(orders []models.RepairOrder) []DeviceTypeStat {
	groups := map[uint]*DeviceTypeStat{}
	descriptions := map[uint][]string{}

	for i := range orders {
		o := &orders[i]
		if o.Device == nil || o.Device.Type == nil {
			continue
		}
		t := o.Device.Type

		g, ok := groups[t.ID]
		if !ok {
			g = &DeviceTypeStat{TypeID: t.ID, TypeName: t.Name, TotalRevenue: decimal.Zero}
			groups[t.ID] = g
		}
		g.TotalOrders++
		if o.StatusID.IsCompleted() {
			g.CompletedOrders++
		}
		g.TotalRevenue = g.TotalRevenue.Add(finalCost(o))
		descriptions[t.ID] = append(descriptions[t.ID], o.ProblemDescription)
	}

	result := make([]DeviceTypeStat, 0, len(groups))
	for id, g := range groups {
		g.CommonProblems = ExtractCommonProblems(descriptions[id], commonProblemLimit)
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TypeID < result[j].TypeID })
	return result
}

// ExtractCommonProblems lowercases each description, splits it on . , ! ? ;
// and counts the trimmed fragments longer than 3 characters. The limit most
// frequent fragments are returned, ties broken alphabetically.
func ExtractCommonProblems(descriptions []string, limit int) []ProblemCount {
	counts := map[string]int{}
	for _, d := range descriptions {
		fragments := strings.FieldsFunc(strings.ToLower(d), func(r rune) bool {
			switch r {
			case '.', ',', '!', '?', ';':
				return true
			}
			return false
		})
		for _, f := range fragments {
			f = strings.TrimSpace(f)
			if len([]rune(f)) > 3 {
				counts[f]++
			}
		}
	}

	problems := make([]ProblemCount, 0, len(counts))
	for p, c := range counts {
		problems = append(problems, ProblemCount{Problem: p, Count: c})
	}
	sort.Slice(problems, func(i, j int) bool {
		if problems[i].Count != problems[j].Count {
			return problems[i].Count > problems[j].Count
		}
		return problems[i].Problem < problems[j].Problem
	})
	if len(problems) > limit {
		problems = problems[:limit]
	}
	return problems
}
