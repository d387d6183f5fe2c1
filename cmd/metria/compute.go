package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/joelkehle/metria/internal/analysis"
	"github.com/joelkehle/metria/internal/apperr"
	"github.com/joelkehle/metria/internal/metrics"
	"github.com/joelkehle/metria/internal/models"
)

type computeOutput struct {
	Metrics  metrics.CalculatedMetrics `json:"metrics"`
	Analysis *models.Analysis          `json:"analysis,omitempty"`
	Warning  string                    `json:"warning,omitempty"`
}

func readInputs(path string) (metrics.ProjectInputs, error) {
	var in metrics.ProjectInputs
	b, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read inputs: %w", err)
	}
	// yaml.Unmarshal accepts JSON too and honours the json tags.
	if err := yaml.Unmarshal(b, &in); err != nil {
		return in, fmt.Errorf("parse inputs %s: %w", path, err)
	}
	return in, nil
}

func newComputeCmd(opts *rootOptions) *cobra.Command {
	var (
		file    string
		analyze bool
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute metrics for a project file and print them as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInputs(file)
			if err != nil {
				return err
			}
			if err := metrics.Validate(in); err != nil {
				return apperr.Validation(err.Error())
			}
			out := computeOutput{Metrics: metrics.Compute(in)}

			if analyze {
				cfg, logger, err := opts.load()
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
				ai, err := analysis.NewFromConfig(cmd.Context(), cfg.AI, logger)
				if err != nil {
					logger.Warn("ai analysis disabled", zap.String("provider", cfg.AI.Provider), zap.Error(err))
					ai = analysis.NewService(nil, cfg.AI.Timeout(), logger)
				}
				a, err := ai.Analyze(cmd.Context(), in, out.Metrics)
				if err != nil {
					out.Warning = err.Error()
				}
				out.Analysis = &a
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "project inputs file (json or yaml)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "also request the AI analysis")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
