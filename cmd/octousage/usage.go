package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/octousage/internal/config"
	"github.com/jgoulah/octousage/internal/localtime"
	"github.com/jgoulah/octousage/internal/publisher"
	"github.com/jgoulah/octousage/internal/report"
)

var (
	usageSVG     string
	usagePNG     string
	usageDaily   bool
	usagePublish bool
)

var usageCmd = &cobra.Command{
	Use:   "usage START [END]",
	Short: "Report daily average and total usage for a date range",
	Long: `Fetches half-hourly readings from local midnight of START up to local
midnight of END and prints the daily average and total usage.

END defaults to today. Readings taken on END itself are not included; pass the
following day to include it. Dates are YYYY-MM-DD.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVar(&usageSVG, "svg", config.DefaultSVGPath, "write the usage card to this SVG file (empty to skip)")
	usageCmd.Flags().StringVar(&usagePNG, "png", "", "also rasterize the card to this PNG file (needs Chrome)")
	usageCmd.Flags().BoolVar(&usageDaily, "daily", false, "include one row per day")
	usageCmd.Flags().BoolVar(&usagePublish, "publish", false, "publish the summary to MQTT and/or Home Assistant")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	start, err := localtime.ParseDate(args[0])
	if err != nil {
		return err
	}
	var end *localtime.Date
	if len(args) == 2 {
		d, err := localtime.ParseDate(args[1])
		if err != nil {
			return err
		}
		end = &d
	}

	sess, err := newSession(out)
	if err != nil {
		return err
	}
	defer sess.finish()

	rng, err := sess.resolver().Resolve(&start, end)
	if err != nil {
		return err
	}
	logger.Debug().
		Str("from", rng.From.String()).
		Str("to", rng.To.String()).
		Msg("resolved range")

	readings, err := sess.fetch(ctx, rng)
	if err != nil {
		return err
	}

	summary, err := report.Build(sess.zone, rng, readings)
	if err != nil {
		return err
	}
	sess.metrics.ObserveReport(summary.Readings, summary.TotalUsage, summary.DailyAverage, sess.zone.Now().Time())

	fmt.Fprintln(out)
	if err := report.WriteTable(out, summary, usageDaily); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	svgPath := usageSVG
	if !cmd.Flags().Changed("svg") {
		svgPath = sess.cfg.GetSVGPath()
	}

	if svgPath != "" || usagePNG != "" {
		svg, err := report.RenderSVG(summary)
		if err != nil {
			return err
		}
		if svgPath != "" {
			if err := os.WriteFile(svgPath, svg, 0644); err != nil {
				return fmt.Errorf("writing svg: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", svgPath)
		}
		if usagePNG != "" {
			if err := report.ExportPNG(ctx, svg, usagePNG); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", usagePNG)
		}
	}

	if usagePublish {
		pub, err := publisher.New(ctx, sess.cfg.MQTT, sess.cfg.HomeAssistant, logger)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		defer pub.Close()

		fmt.Fprint(out, "Publishing summary... ")
		if err := pub.Publish(ctx, summary); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("publishing: %w", err)
		}
		fmt.Fprintln(out, "✓")
	}

	return nil
}
