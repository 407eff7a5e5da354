package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// moduleAPI serves canned bodies per path; paths without a body answer 404
type moduleAPI struct {
	mu       sync.Mutex
	bodies   map[string]string
	status   map[string]int
	delay    map[string]time.Duration
	authSeen []string
}

func newModuleAPI() *moduleAPI {
	return &moduleAPI{
		bodies: map[string]string{
			PathInvoices: `{"success":true,"data":{"data":[
				{"id":"i1","status":"paid","total":100,"amountPaid":100},
				{"id":"i2","status":"sent","total":"250.50","amountPaid":50},
				{"id":"i3","status":"overdue","total":80,"amountPaid":0},
				{"id":"i4","status":"cancelled","total":999,"amountPaid":0}]}}`,
			PathPayments:      `{"success":true,"data":{"data":[{"id":"p1","amount":100},{"id":"p2","amount":"50"}]}}`,
			PathCompanies:     `{"success":true,"data":{"data":[{"id":"c1"},{"id":"c2"},{"id":"c3"}]}}`,
			PathOpportunities: `{"success":true,"data":{"data":[{"id":"o1","stage":"proposal","value":1000},{"id":"o2","stage":"closed_won","value":500},{"id":"o3","stage":"closed_lost","value":700},{"id":"o4","stage":"qualification","value":"250"}]}}`,
			PathProjects:      `{"success":true,"data":{"data":[{"id":"pr1","status":"active"},{"id":"pr2","status":"completed"},{"id":"pr3","status":"on_hold"}]}}`,
			PathInventory:     `{"success":true,"data":{"totalItems":42,"lowStockItems":3,"totalValue":"1234.5"}}`,
			PathEmployees:     `{"success":true,"data":{"data":[{"id":"e1","status":"active"},{"id":"e2","status":"terminated"}]}}`,
			PathSalesOrders:   `{"success":true,"data":{"data":{"totalOrders":10,"pendingOrders":4,"totalRevenue":5000}}}`,
			PathBOMs:          `{"success":true,"data":{"totalBoms":7,"activeBoms":5}}`,
			PathAssets:        `{"success":true,"data":{"totalAssets":12,"totalValue":36000}}`,
			PathUnreadCount:   `{"success":true,"data":{"count":9}}`,
		},
		status: map[string]int{},
		delay:  map[string]time.Duration{},
	}
}

func (m *moduleAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.authSeen = append(m.authSeen, r.Header.Get("Authorization"))
	body, ok := m.bodies[r.URL.Path]
	status := m.status[r.URL.Path]
	delay := m.delay[r.URL.Path]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestAggregator(t *testing.T, api *moduleAPI, timeout time.Duration) *Aggregator {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL+"/", "service-token", timeout).WithHTTPClient(srv.Client())
	return NewAggregator(client)
}

func TestSummary_AllModules(t *testing.T) {
	agg := newTestAggregator(t, newModuleAPI(), time.Second)

	s := agg.Summary(context.Background())

	assert.Equal(t, FinanceSummary{
		TotalInvoiced:    100 + 250.5 + 80 + 999,
		Outstanding:      200.5 + 80,
		OverdueInvoices:  1,
		InvoiceCount:     4,
		PaymentsReceived: 150,
		PaymentCount:     2,
	}, s.Finance)
	assert.Equal(t, CRMSummary{Companies: 3, OpenOpportunities: 2, PipelineValue: 1250, WonValue: 500}, s.CRM)
	assert.Equal(t, ProjectsSummary{Total: 3, Active: 1, Completed: 1}, s.Projects)
	assert.Equal(t, InventorySummary{TotalItems: 42, LowStockItems: 3, TotalValue: 1234.5}, s.Inventory)
	assert.Equal(t, HRSummary{TotalEmployees: 2, ActiveEmployees: 1}, s.HR)
	assert.Equal(t, SalesSummary{TotalOrders: 10, PendingOrders: 4, TotalRevenue: 5000}, s.Sales)
	assert.Equal(t, ManufacturingSummary{TotalBOMs: 7, ActiveBOMs: 5}, s.Manufacturing)
	assert.Equal(t, AssetsSummary{TotalAssets: 12, TotalValue: 36000}, s.Assets)
	assert.Equal(t, NotificationsSummary{Unread: 9}, s.Notifications)
}

func TestSummary_NonFiniteAmountStillMarshals(t *testing.T) {
	api := newModuleAPI()
	api.bodies[PathInvoices] = `{"success":true,"data":[{"id":"i1","status":"sent","total":"NaN","amountPaid":"Infinity"}]}`
	api.bodies[PathAssets] = `{"success":true,"data":{"totalAssets":12,"totalValue":"-Inf"}}`

	s := newTestAggregator(t, api, time.Second).Summary(context.Background())

	assert.Equal(t, 1, s.Finance.InvoiceCount)
	assert.Zero(t, s.Finance.TotalInvoiced)
	assert.Zero(t, s.Finance.Outstanding)
	assert.Equal(t, AssetsSummary{TotalAssets: 12}, s.Assets)
	assert.Equal(t, 3, s.CRM.Companies)

	_, err := json.Marshal(s)
	require.NoError(t, err)
}

func TestSummary_CountsSentAsStrings(t *testing.T) {
	api := newModuleAPI()
	api.bodies[PathInventory] = `{"success":true,"data":{"totalItems":"12","lowStockItems":"3","totalValue":"99.5"}}`
	api.bodies[PathUnreadCount] = `{"success":true,"data":{"count":"4"}}`

	s := newTestAggregator(t, api, time.Second).Summary(context.Background())

	assert.Equal(t, InventorySummary{TotalItems: 12, LowStockItems: 3, TotalValue: 99.5}, s.Inventory)
	assert.Equal(t, NotificationsSummary{Unread: 4}, s.Notifications)
}

func TestSummary_FailuresYieldZerosWithoutAffectingOthers(t *testing.T) {
	api := newModuleAPI()
	api.status[PathInvoices] = http.StatusInternalServerError
	api.bodies[PathCompanies] = `not json`
	api.bodies[PathProjects] = `{"success":false,"error":"boom"}`
	api.bodies[PathInventory] = `{"success":true,"data":["unexpected","array"]}`
	delete(api.bodies, PathBOMs)
	api.bodies[PathUnreadCount] = `{"success":true,"data":null}`

	s := newTestAggregator(t, api, time.Second).Summary(context.Background())

	// invoices failed, payments still counted
	assert.Equal(t, 0, s.Finance.InvoiceCount)
	assert.Zero(t, s.Finance.TotalInvoiced)
	assert.Equal(t, 150.0, s.Finance.PaymentsReceived)

	assert.Equal(t, 0, s.CRM.Companies)
	assert.Equal(t, 2, s.CRM.OpenOpportunities)

	assert.Equal(t, ProjectsSummary{}, s.Projects)
	assert.Equal(t, InventorySummary{}, s.Inventory)
	assert.Equal(t, ManufacturingSummary{}, s.Manufacturing)
	assert.Equal(t, NotificationsSummary{}, s.Notifications)

	assert.Equal(t, HRSummary{TotalEmployees: 2, ActiveEmployees: 1}, s.HR)
	assert.Equal(t, 10, s.Sales.TotalOrders)
	assert.Equal(t, 12, s.Assets.TotalAssets)
}

func TestSummary_UnreachableAPIIsAllZero(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	hc := srv.Client()
	srv.Close()

	agg := NewAggregator(NewClient(url, "", 200*time.Millisecond).WithHTTPClient(hc))
	assert.Equal(t, Summary{}, agg.Summary(context.Background()))
}

func TestSummary_SlowModuleIsBoundedByRequestTimeout(t *testing.T) {
	api := newModuleAPI()
	api.delay[PathAssets] = 5 * time.Second

	agg := newTestAggregator(t, api, 100*time.Millisecond)

	start := time.Now()
	s := agg.Summary(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, AssetsSummary{}, s.Assets)
	assert.Equal(t, 9, s.Notifications.Unread)
}

func TestSummary_HonorsCancellation(t *testing.T) {
	api := newModuleAPI()
	for _, p := range []string{PathInvoices, PathCompanies, PathProjects, PathInventory, PathEmployees, PathSalesOrders, PathBOMs, PathAssets, PathUnreadCount} {
		api.delay[p] = 5 * time.Second
	}
	agg := newTestAggregator(t, api, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	s := agg.Summary(ctx)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 0, s.CRM.Companies)
}

func TestSummaryAs_ForwardsCallerToken(t *testing.T) {
	api := newModuleAPI()
	agg := newTestAggregator(t, api, time.Second)

	agg.SummaryAs(context.Background(), "caller-jwt")

	api.mu.Lock()
	defer api.mu.Unlock()
	require.NotEmpty(t, api.authSeen)
	for _, h := range api.authSeen {
		assert.Equal(t, "Bearer caller-jwt", h)
	}
}

func TestSnapshot_Stamped(t *testing.T) {
	agg := newTestAggregator(t, newModuleAPI(), time.Second)
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	agg.now = func() time.Time { return fixed }

	snap := agg.Snapshot(context.Background())
	assert.Equal(t, fixed, snap.GeneratedAt)
	assert.Equal(t, 3, snap.Summary.CRM.Companies)

	b, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"generatedAt":"2026-03-04T05:06:07Z"`)
	assert.Contains(t, string(b), `"openOpportunities":2`)
}
