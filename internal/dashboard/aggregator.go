package dashboard

import (
	"context"
	"time"

	"github.com/bizsuite/bizsuite/internal/config"
	"github.com/bizsuite/bizsuite/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Module API paths read by the aggregator
const (
	PathInvoices      = "/invoices"
	PathPayments      = "/payments"
	PathCompanies     = "/companies"
	PathOpportunities = "/opportunities"
	PathProjects      = "/projects"
	PathInventory     = "/inventory/stats"
	PathEmployees     = "/hr/employees"
	PathSalesOrders   = "/sales/orders/stats"
	PathBOMs          = "/manufacturing/boms/stats"
	PathAssets        = "/assets/assets/stats"
	PathUnreadCount   = "/notifications/unread-count"
)

// Snapshot is a Summary stamped with the time it was produced
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Summary     Summary   `json:"summary"`
}

// Aggregator runs one job per module and folds the results into a Summary
type Aggregator struct {
	client *Client
	now    func() time.Time
}

// NewAggregator creates an aggregator reading through client
func NewAggregator(client *Client) *Aggregator {
	return &Aggregator{client: client, now: func() time.Time { return time.Now().UTC() }}
}

// Summary fetches every module concurrently. A module that fails or answers
// with an unexpected shape contributes zeros; Summary itself never fails.
func (a *Aggregator) Summary(ctx context.Context) Summary {
	return a.summary(ctx, a.client)
}

// NewAggregatorFromConfig builds the client and aggregator from DASHBOARD_* settings
func NewAggregatorFromConfig(cfg config.DashboardConfig) *Aggregator {
	return NewAggregator(NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout))
}

// SummaryAs is Summary with the module requests authenticated as token
func (a *Aggregator) SummaryAs(ctx context.Context, token string) Summary {
	return a.summary(ctx, a.client.WithToken(token))
}

// Snapshot is Summary plus the generation time
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	return Snapshot{GeneratedAt: a.now(), Summary: a.Summary(ctx)}
}

func (a *Aggregator) summary(ctx context.Context, c *Client) Summary {
	var s Summary
	g, gctx := errgroup.WithContext(ctx)

	// each job writes a distinct field of s and never returns an error
	g.Go(func() error {
		invoices := fetch[[]Invoice](gctx, c, "finance", PathInvoices)
		payments := fetch[[]Payment](gctx, c, "finance", PathPayments)
		s.Finance = reduceFinance(invoices, payments)
		return nil
	})
	g.Go(func() error {
		companies := fetch[[]CompanyRef](gctx, c, "crm", PathCompanies)
		opps := fetch[[]Opportunity](gctx, c, "crm", PathOpportunities)
		s.CRM = reduceCRM(companies, opps)
		return nil
	})
	g.Go(func() error {
		s.Projects = reduceProjects(fetch[[]Project](gctx, c, "projects", PathProjects))
		return nil
	})
	g.Go(func() error {
		st := fetch[InventoryStats](gctx, c, "inventory", PathInventory)
		s.Inventory = InventorySummary{TotalItems: int(st.TotalItems), LowStockItems: int(st.LowStockItems), TotalValue: float64(st.TotalValue)}
		return nil
	})
	g.Go(func() error {
		s.HR = reduceHR(fetch[[]Employee](gctx, c, "hr", PathEmployees))
		return nil
	})
	g.Go(func() error {
		st := fetch[SalesOrderStats](gctx, c, "sales", PathSalesOrders)
		s.Sales = SalesSummary{TotalOrders: int(st.TotalOrders), PendingOrders: int(st.PendingOrders), TotalRevenue: float64(st.TotalRevenue)}
		return nil
	})
	g.Go(func() error {
		st := fetch[BOMStats](gctx, c, "manufacturing", PathBOMs)
		s.Manufacturing = ManufacturingSummary{TotalBOMs: int(st.TotalBOMs), ActiveBOMs: int(st.ActiveBOMs)}
		return nil
	})
	g.Go(func() error {
		st := fetch[AssetStats](gctx, c, "assets", PathAssets)
		s.Assets = AssetsSummary{TotalAssets: int(st.TotalAssets), TotalValue: float64(st.TotalValue)}
		return nil
	})
	g.Go(func() error {
		s.Notifications = NotificationsSummary{Unread: int(fetch[UnreadCount](gctx, c, "notifications", PathUnreadCount).Count)}
		return nil
	})

	_ = g.Wait()
	return s
}

// fetch is getJSON with failures logged and replaced by the zero value
func fetch[T any](ctx context.Context, c *Client, module, path string) T {
	v, err := getJSON[T](ctx, c, path)
	if err != nil {
		logging.LogKV("warn", "dashboard module fetch failed", map[string]interface{}{
			"module": module,
			"path":   path,
			"error":  err,
		})
		var zero T
		return zero
	}
	return v
}
