package dashboard

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary or numeric figure. Modules serialize decimals either
// as JSON numbers or as strings; anything unparseable or non-finite decodes
// to zero.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount(parseNumber(b))
	return nil
}

// Count is an integer figure. PostgreSQL COUNT is a bigint, so modules often
// send it as a string. Fractions are truncated.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	*c = Count(parseNumber(b))
	return nil
}

func parseNumber(b []byte) float64 {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0
		}
		b = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Invoice as returned by GET /invoices
type Invoice struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Total      Amount `json:"total"`
	AmountPaid Amount `json:"amountPaid"`
}

// Invoice statuses the finance summary distinguishes
const (
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
	InvoiceStatusOverdue   = "overdue"
)

// Balance is the unpaid part of the invoice, never negative
func (i Invoice) Balance() float64 {
	b := float64(i.Total - i.AmountPaid)
	if b < 0 {
		return 0
	}
	return b
}

// Payment as returned by GET /payments
type Payment struct {
	ID     string `json:"id"`
	Amount Amount `json:"amount"`
}

// CompanyRef is the part of GET /companies the dashboard reads
type CompanyRef struct {
	ID string `json:"id"`
}

// Opportunity as returned by GET /opportunities
type Opportunity struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`
	Value Amount `json:"value"`
}

// Opportunity stages that end the sales cycle
const (
	OpportunityStageWon  = "closed_won"
	OpportunityStageLost = "closed_lost"
)

// Open reports whether the opportunity is still in the pipeline
func (o Opportunity) Open() bool {
	return o.Stage != OpportunityStageWon && o.Stage != OpportunityStageLost
}

// Project as returned by GET /projects
type Project struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Employee as returned by GET /hr/employees
type Employee struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InventoryStats is GET /inventory/stats
type InventoryStats struct {
	TotalItems    Count  `json:"totalItems"`
	LowStockItems Count  `json:"lowStockItems"`
	TotalValue    Amount `json:"totalValue"`
}

// SalesOrderStats is GET /sales/orders/stats
type SalesOrderStats struct {
	TotalOrders   Count  `json:"totalOrders"`
	PendingOrders Count  `json:"pendingOrders"`
	TotalRevenue  Amount `json:"totalRevenue"`
}

// BOMStats is GET /manufacturing/boms/stats
type BOMStats struct {
	TotalBOMs  Count `json:"totalBoms"`
	ActiveBOMs Count `json:"activeBoms"`
}

// AssetStats is GET /assets/assets/stats
type AssetStats struct {
	TotalAssets Count  `json:"totalAssets"`
	TotalValue  Amount `json:"totalValue"`
}

// UnreadCount is GET /notifications/unread-count
type UnreadCount struct {
	Count Count `json:"count"`
}

// FinanceSummary reduces invoices and payments
type FinanceSummary struct {
	TotalInvoiced    float64 `json:"totalInvoiced"`
	Outstanding      float64 `json:"outstanding"`
	OverdueInvoices  int     `json:"overdueInvoices"`
	InvoiceCount     int     `json:"invoiceCount"`
	PaymentsReceived float64 `json:"paymentsReceived"`
	PaymentCount     int     `json:"paymentCount"`
}

// CRMSummary reduces companies and opportunities
type CRMSummary struct {
	Companies         int     `json:"companies"`
	OpenOpportunities int     `json:"openOpportunities"`
	PipelineValue     float64 `json:"pipelineValue"`
	WonValue          float64 `json:"wonValue"`
}

// ProjectsSummary counts projects by status
type ProjectsSummary struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// InventorySummary mirrors InventoryStats
type InventorySummary struct {
	TotalItems    int     `json:"totalItems"`
	LowStockItems int     `json:"lowStockItems"`
	TotalValue    float64 `json:"totalValue"`
}

// HRSummary counts employees
type HRSummary struct {
	TotalEmployees  int `json:"totalEmployees"`
	ActiveEmployees int `json:"activeEmployees"`
}

// SalesSummary mirrors SalesOrderStats
type SalesSummary struct {
	TotalOrders   int     `json:"totalOrders"`
	PendingOrders int     `json:"pendingOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// ManufacturingSummary mirrors BOMStats
type ManufacturingSummary struct {
	TotalBOMs  int `json:"totalBoms"`
	ActiveBOMs int `json:"activeBoms"`
}

// AssetsSummary mirrors AssetStats
type AssetsSummary struct {
	TotalAssets int     `json:"totalAssets"`
	TotalValue  float64 `json:"totalValue"`
}

// NotificationsSummary holds the caller's unread count
type NotificationsSummary struct {
	Unread int `json:"unread"`
}

// Summary is the aggregate of every module. The zero value is what a caller
// sees when no module answered.
type Summary struct {
	Finance       FinanceSummary       `json:"finance"`
	CRM           CRMSummary           `json:"crm"`
	Projects      ProjectsSummary      `json:"projects"`
	Inventory     InventorySummary     `json:"inventory"`
	HR            HRSummary            `json:"hr"`
	Sales         SalesSummary         `json:"sales"`
	Manufacturing ManufacturingSummary `json:"manufacturing"`
	Assets        AssetsSummary        `json:"assets"`
	Notifications NotificationsSummary `json:"notifications"`
}

func reduceFinance(invoices []Invoice, payments []Payment) FinanceSummary {
	var s FinanceSummary
	s.InvoiceCount = len(invoices)
	for _, inv := range invoices {
		s.TotalInvoiced += float64(inv.Total)
		if inv.Status == InvoiceStatusOverdue {
			s.OverdueInvoices++
		}
		if inv.Status != InvoiceStatusPaid && inv.Status != InvoiceStatusCancelled {
			s.Outstanding += inv.Balance()
		}
	}
	s.PaymentCount = len(payments)
	for _, p := range payments {
		s.PaymentsReceived += float64(p.Amount)
	}
	return s
}

func reduceCRM(companies []CompanyRef, opps []Opportunity) CRMSummary {
	s := CRMSummary{Companies: len(companies)}
	for _, o := range opps {
		switch {
		case o.Open():
			s.OpenOpportunities++
			s.PipelineValue += float64(o.Value)
		case o.Stage == OpportunityStageWon:
			s.WonValue += float64(o.Value)
		}
	}
	return s
}

func reduceProjects(projects []Project) ProjectsSummary {
	s := ProjectsSummary{Total: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case "active":
			s.Active++
		case "completed":
			s.Completed++
		}
	}
	return s
}

func reduceHR(employees []Employee) HRSummary {
	s := HRSummary{TotalEmployees: len(employees)}
	for _, e := range employees {
		if e.Status == "active" {
			s.ActiveEmployees++
		}
	}
	return s
}
