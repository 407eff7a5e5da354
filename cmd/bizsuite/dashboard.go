package main

import (
	"encoding/json"
	"fmt"

	"github.com/bizsuite/bizsuite/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	dashboardPublish bool
	dashboardToken   string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Aggregate module statistics and print the snapshot",
	Long: `Fetch every module's statistics once, print the snapshot as JSON and,
with --publish, write it to S3 and CloudWatch as configured by
DASHBOARD_S3_BUCKET and DASHBOARD_METRICS_NAMESPACE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dcfg := cfg.Dashboard
		if dashboardToken != "" {
			dcfg.APIToken = dashboardToken
		}

		snap := dashboard.NewAggregatorFromConfig(dcfg).Snapshot(ctx)

		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if !dashboardPublish {
			return nil
		}
		pub, err := dashboard.NewPublisher(ctx, dcfg, cfg.AWSRegion)
		if err != nil {
			return err
		}
		if !pub.Enabled() {
			return fmt.Errorf("--publish needs DASHBOARD_S3_BUCKET or DASHBOARD_METRICS_NAMESPACE")
		}
		_, err = pub.Publish(ctx, snap)
		return err
	},
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardPublish, "publish", false, "Publish the snapshot to S3 and CloudWatch")
	dashboardCmd.Flags().StringVar(&dashboardToken, "token", "", "Bearer token for the module API (default: DASHBOARD_API_TOKEN)")
}
