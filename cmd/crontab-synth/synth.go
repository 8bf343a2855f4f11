package main

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/grafana/kindimports/app"
	"github.com/grafana/kindimports/logging"
	"github.com/grafana/kindimports/metrics"
	"github.com/grafana/kindimports/resource"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

func newSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize CronTab manifests from a values file",
		RunE:  synthCmdFunc,
	}
	cmd.Flags().StringP("values", "f", "values.yaml", "Path to the values file defining the CronTabs")
	cmd.Flags().StringP("output", "o", app.DefaultOutdir, "Directory to write synthesized manifests to")
	cmd.Flags().String("chart", "", "Chart name, overriding chart.name in the values file")
	cmd.Flags().StringP("namespace", "n", "", "Namespace, overriding chart.namespace in the values file")
	cmd.Flags().Bool("create-namespace", false, "Add a Namespace object for the chart namespace")
	cmd.Flags().String("format", formatYAML, "Output format, 'yaml' or 'json'")
	cmd.Flags().Bool("single-file", false, "Write all charts to a single file")
	cmd.Flags().Bool("validate", false, "Validate cronSpec, image, and replicas values before synthesizing")
	cmd.Flags().String("metrics-file", "", "If set, write synthesis metrics to this path in the prometheus text format")
	cmd.Flags().Bool("stdout", false, "Print the synthesized YAML to stdout instead of writing files")

	// Don't show "usage" information when an error is returned form the command,
	// because our errors are not command-usage-based
	cmd.SilenceUsage = true
	return cmd
}

//nolint:funlen
func synthCmdFunc(cmd *cobra.Command, _ []string) error {
	logLevel, err := cmd.Flags().GetString(logLevelFlag)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := logging.NewTextLogger(cmd.ErrOrStderr(), level)
	ctx := logging.Context(cmd.Context(), logger)

	valuesPath, err := cmd.Flags().GetString("values")
	if err != nil {
		return err
	}
	outdir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	chartName, err := cmd.Flags().GetString("chart")
	if err != nil {
		return err
	}
	namespace, err := cmd.Flags().GetString("namespace")
	if err != nil {
		return err
	}
	createNamespace, err := cmd.Flags().GetBool("create-namespace")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	singleFile, err := cmd.Flags().GetBool("single-file")
	if err != nil {
		return err
	}
	validate, err := cmd.Flags().GetBool("validate")
	if err != nil {
		return err
	}
	metricsFile, err := cmd.Flags().GetString("metrics-file")
	if err != nil {
		return err
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}

	var encoding resource.KindEncoding
	switch strings.ToLower(format) {
	case formatYAML:
		encoding = resource.KindEncodingYAML
	case formatJSON:
		encoding = resource.KindEncodingJSON
	default:
		return fmt.Errorf("unknown format '%s', must be one of '%s' or '%s'", format, formatYAML, formatJSON)
	}

	values, err := LoadValues(valuesPath)
	if err != nil {
		return err
	}
	if chartName != "" {
		values.Chart.Name = chartName
	}
	if namespace != "" {
		values.Chart.Namespace = namespace
	}
	if createNamespace {
		values.Chart.CreateNamespace = true
	}
	logger.Debug("loaded values", "path", valuesPath, "crontabs", len(values.CronTabs))
	if validate {
		if err := values.Validate(); err != nil {
			return err
		}
	}

	registry, err := newRegistry()
	if err != nil {
		return err
	}
	a := app.New(app.Config{
		Outdir:        outdir,
		Encoding:      encoding,
		SingleFile:    singleFile,
		MetricsConfig: metrics.Config{Namespace: "crontab"},
		Registry:      registry,
	})
	var exporter *metrics.Exporter
	if metricsFile != "" {
		registry := prometheus.NewRegistry()
		exporter = metrics.NewExporter(metrics.ExporterConfig{
			Registerer: registry,
			Gatherer:   registry,
		})
		if err := exporter.Register(a); err != nil {
			return err
		}
	}

	if _, err := values.Build(a); err != nil {
		return err
	}

	if toStdout {
		out, err := a.SynthYAML(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	} else {
		files, err := a.Synth(ctx)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	}

	if exporter != nil {
		return exporter.WriteTextfile(metricsFile)
	}
	return nil
}
