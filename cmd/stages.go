package cmd

import (
	"fmt"
	"os"

	"github.com/keroloshany47/retail-etl/extract"
	"github.com/keroloshany47/retail-etl/mart"
	"github.com/keroloshany47/retail-etl/quality"
	"github.com/keroloshany47/retail-etl/report"
	"github.com/keroloshany47/retail-etl/transform"
	"github.com/keroloshany47/retail-etl/utils"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extracts exchange rates, database tables and data lake files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger("extract")
			if err != nil {
				return err
			}

			clock := utils.RealTimeProvider{}
			out := cfg.Paths.Extracted
			e := &extract.Extractor{
				Sources: []extract.Source{
					extract.NewAPISource(extract.NewRatesClient(cfg, log), out, clock, log),
					extract.NewDatabaseSource(extract.OpenMySQL(cfg.Database), cfg.Database.Tables, out, clock, log),
					extract.NewDataLakeSource(cfg.Paths.DataLake, out, clock, log),
				},
				OutDir: out,
				Logger: log,
			}

			// Source failures are reported, not returned.
			e.Report(e.Run(cmd.Context()))
			return nil
		},
	}
}

func newQualityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quality",
		Short: "Cleans the extracted files and writes the quality report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger("quality")
			if err != nil {
				return err
			}

			c := &quality.Checker{
				InDir:     cfg.Paths.Extracted,
				OutDir:    cfg.Paths.Staging1,
				ReportDir: cfg.Paths.QualityReports,
				Rules:     quality.DefaultRules(),
				Clock:     utils.RealTimeProvider{},
				Logger:    log,
			}
			qr, err := c.Run(cmd.Context())
			if err != nil {
				log.Error(fmt.Sprintf("Error running quality checks: %v", err))
				return err
			}
			log.Info(fmt.Sprintf("Quality checks completed for %d files", len(qr.Metrics)))
			return nil
		},
	}
}

func newTransformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Adds local prices, delivery metrics and customer flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger("transform")
			if err != nil {
				return err
			}

			t := &transform.Transformer{
				InDir:    cfg.Paths.Staging1,
				OutDir:   cfg.Paths.Staging2,
				Currency: cfg.API.Currency,
				Logger:   log,
			}
			if err := t.Run(cmd.Context()); err != nil {
				log.Error(fmt.Sprintf("Error running transformation: %v", err))
				return err
			}
			return nil
		},
	}
}

func newModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Builds the star schema and optionally loads the warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger("model")
			if err != nil {
				return err
			}

			m := &mart.Modeler{
				InDir:     cfg.Paths.Staging2,
				OutDir:    cfg.Paths.Mart,
				Warehouse: cfg.Warehouse,
				Logger:    log,
			}
			if _, err := m.Run(cmd.Context()); err != nil {
				log.Error(fmt.Sprintf("Error building star schema: %v", err))
				return err
			}
			return nil
		},
	}
}

func newVisualizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visualize",
		Short: "Renders the sales charts and prints the key metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger("visualize")
			if err != nil {
				return err
			}

			v := &report.Visualizer{
				MartDir: cfg.Paths.Mart,
				OutDir:  cfg.Paths.Visualizations,
				Out:     os.Stdout,
				Logger:  log,
			}
			if err := v.Run(cmd.Context()); err != nil {
				log.Error(fmt.Sprintf("Error creating visualizations: %v", err))
				return err
			}
			return nil
		},
	}
}
