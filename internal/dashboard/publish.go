package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bizsuite/bizsuite/internal/config"
	"github.com/bizsuite/bizsuite/internal/logging"
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type metricPutter interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// SnapshotUploader writes snapshots as JSON objects to S3
type SnapshotUploader struct {
	Client objectPutter
	Bucket string
	Prefix string
}

// Enabled reports whether a bucket and client are configured
func (u *SnapshotUploader) Enabled() bool { return u != nil && u.Client != nil && u.Bucket != "" }

// UploadJSON stores v under key and returns its s3:// location
func (u *SnapshotUploader) UploadJSON(ctx context.Context, key string, v any) (string, error) {
	if !u.Enabled() {
		return "", fmt.Errorf("s3 uploader not configured")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", u.Bucket, key), nil
}

// TimestampKey builds an object key like dashboard/20260102T150405Z.json
func TimestampKey(prefix string, t time.Time) string {
	return fmt.Sprintf("%s%s.json", prefix, t.UTC().Format("20060102T150405Z"))
}

// MetricsPublisher emits one CloudWatch datum per summary figure
type MetricsPublisher struct {
	Client    metricPutter
	Namespace string
}

// Enabled reports whether a namespace and client are configured
func (m *MetricsPublisher) Enabled() bool { return m != nil && m.Client != nil && m.Namespace != "" }

// Publish sends the snapshot's figures
func (m *MetricsPublisher) Publish(ctx context.Context, snap Snapshot) error {
	if !m.Enabled() {
		return fmt.Errorf("metrics publisher not configured")
	}
	_, err := m.Client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.Namespace),
		MetricData: metricData(snap),
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func metricData(snap Snapshot) []cwtypes.MetricDatum {
	ts := snap.GeneratedAt
	s := snap.Summary
	datum := func(module, name string, v float64, unit cwtypes.StandardUnit) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Timestamp:  &ts,
			Unit:       unit,
			Value:      aws.Float64(v),
			Dimensions: dims("Module", module),
		}
	}
	count := cwtypes.StandardUnitCount
	none := cwtypes.StandardUnitNone
	return []cwtypes.MetricDatum{
		datum("finance", "TotalInvoiced", s.Finance.TotalInvoiced, none),
		datum("finance", "Outstanding", s.Finance.Outstanding, none),
		datum("finance", "OverdueInvoices", float64(s.Finance.OverdueInvoices), count),
		datum("finance", "InvoiceCount", float64(s.Finance.InvoiceCount), count),
		datum("finance", "PaymentsReceived", s.Finance.PaymentsReceived, none),
		datum("finance", "PaymentCount", float64(s.Finance.PaymentCount), count),
		datum("crm", "Companies", float64(s.CRM.Companies), count),
		datum("crm", "OpenOpportunities", float64(s.CRM.OpenOpportunities), count),
		datum("crm", "PipelineValue", s.CRM.PipelineValue, none),
		datum("crm", "WonValue", s.CRM.WonValue, none),
		datum("projects", "TotalProjects", float64(s.Projects.Total), count),
		datum("projects", "ActiveProjects", float64(s.Projects.Active), count),
		datum("projects", "CompletedProjects", float64(s.Projects.Completed), count),
		datum("inventory", "TotalItems", float64(s.Inventory.TotalItems), count),
		datum("inventory", "LowStockItems", float64(s.Inventory.LowStockItems), count),
		datum("inventory", "InventoryValue", s.Inventory.TotalValue, none),
		datum("hr", "TotalEmployees", float64(s.HR.TotalEmployees), count),
		datum("hr", "ActiveEmployees", float64(s.HR.ActiveEmployees), count),
		datum("sales", "TotalOrders", float64(s.Sales.TotalOrders), count),
		datum("sales", "PendingOrders", float64(s.Sales.PendingOrders), count),
		datum("sales", "TotalRevenue", s.Sales.TotalRevenue, none),
		datum("manufacturing", "TotalBOMs", float64(s.Manufacturing.TotalBOMs), count),
		datum("manufacturing", "ActiveBOMs", float64(s.Manufacturing.ActiveBOMs), count),
		datum("assets", "TotalAssets", float64(s.Assets.TotalAssets), count),
		datum("assets", "AssetValue", s.Assets.TotalValue, none),
		datum("notifications", "UnreadNotifications", float64(s.Notifications.Unread), count),
	}
}

func dims(k, v string) []cwtypes.Dimension {
	return []cwtypes.Dimension{{Name: &k, Value: &v}}
}

// Publisher fans a snapshot out to whichever sinks are configured
type Publisher struct {
	Snapshots *SnapshotUploader
	Metrics   *MetricsPublisher
}

// PublishResult reports where a snapshot went
type PublishResult struct {
	Location         string `json:"location,omitempty"`
	MetricsPublished int    `json:"metricsPublished"`
}

// NewPublisher builds the AWS clients for the configured sinks. With neither
// DASHBOARD_S3_BUCKET nor DASHBOARD_METRICS_NAMESPACE set it returns a
// publisher that does nothing.
func NewPublisher(ctx context.Context, cfg config.DashboardConfig, region string) (*Publisher, error) {
	p := &Publisher{
		Snapshots: &SnapshotUploader{Bucket: cfg.SnapshotBucket, Prefix: cfg.SnapshotPrefix},
		Metrics:   &MetricsPublisher{Namespace: cfg.MetricsNamespace},
	}
	if cfg.SnapshotBucket == "" && cfg.MetricsNamespace == "" {
		return p, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	if cfg.SnapshotBucket != "" {
		p.Snapshots.Client = s3.NewFromConfig(awsCfg)
	}
	if cfg.MetricsNamespace != "" {
		p.Metrics.Client = cloudwatch.NewFromConfig(awsCfg)
	}
	return p, nil
}

// Enabled reports whether at least one sink is configured
func (p *Publisher) Enabled() bool {
	return p != nil && (p.Snapshots.Enabled() || p.Metrics.Enabled())
}

// Publish writes snap to every configured sink. Each sink is attempted even
// if another fails; the failures are joined.
func (p *Publisher) Publish(ctx context.Context, snap Snapshot) (PublishResult, error) {
	var res PublishResult
	var errs []error

	if p.Snapshots.Enabled() {
		loc, err := p.Snapshots.UploadJSON(ctx, TimestampKey(p.Snapshots.Prefix, snap.GeneratedAt), snap)
		if err != nil {
			errs = append(errs, err)
		} else {
			res.Location = loc
		}
	}
	if p.Metrics.Enabled() {
		if err := p.Metrics.Publish(ctx, snap); err != nil {
			errs = append(errs, err)
		} else {
			res.MetricsPublished = len(metricData(snap))
		}
	}

	err := errors.Join(errs...)
	fields := map[string]interface{}{
		"location": res.Location,
		"metrics":  res.MetricsPublished,
	}
	if err != nil {
		fields["error"] = err
		logging.LogKV("error", "dashboard snapshot publish failed", fields)
	} else {
		logging.LogKV("info", "dashboard snapshot published", fields)
	}
	return res, err
}
