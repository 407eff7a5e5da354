package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bizsuite/bizsuite/internal/config"
	"github.com/bizsuite/bizsuite/internal/dashboard"
	"github.com/bizsuite/bizsuite/internal/logging"
)

type event struct{}

type result struct {
	GeneratedAt      string `json:"generated_at"`
	Location         string `json:"location,omitempty"`
	MetricsPublished int    `json:"metrics_published"`
}

func handler(ctx context.Context, _ event) (result, error) {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)
	defer logging.Sync()

	pub, err := dashboard.NewPublisher(ctx, cfg.Dashboard, cfg.AWSRegion)
	if err != nil {
		return result{}, err
	}
	if !pub.Enabled() {
		return result{}, fmt.Errorf("DASHBOARD_S3_BUCKET or DASHBOARD_METRICS_NAMESPACE env var is required")
	}

	snap := dashboard.NewAggregatorFromConfig(cfg.Dashboard).Snapshot(ctx)
	res, err := pub.Publish(ctx, snap)
	if err != nil {
		return result{}, err
	}
	return result{
		GeneratedAt:      snap.GeneratedAt.Format(time.RFC3339),
		Location:         res.Location,
		MetricsPublished: res.MetricsPublished,
	}, nil
}

func main() { lambda.Start(handler) }
