package main

import (
	"fmt"
	"io"

	"binstat/config"
	"binstat/hist"
	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"
	"binstat/infra/observe/log/staticLog"
	"binstat/loader"
	"binstat/presenter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	Version = "dev"
	Build   = ""
)

type cliFlags struct {
	configFile    string
	columns       []string
	bins          int
	filter        bool
	outlierFactor float64
	inputFormat   string
	jsonPaths     []string
	delimiter     string
	format        string
	precision     int32
	stats         bool
	percentiles   []float64
	logLevel      string
	logFile       string
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{}
	rootCmd := &cobra.Command{
		Use:   "histogram [flags] <input_file>",
		Short: "Build histograms for numeric data",
		Long: `histogram reads numeric columns from a CSV (or JSON) file and prints a
frequency histogram per column. Outliers outside median ± 3*IQR are dropped
unless --filter-outliers=false; bin width follows the Freedman–Diaconis rule
unless --bins is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], f)
		},
	}

	fl := rootCmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "YAML configuration file")
	fl.StringSliceVar(&f.columns, "column", nil, "Name of the column to process (repeatable); all columns when omitted")
	fl.IntVar(&f.bins, "bins", 0, "Number of bins; Freedman–Diaconis estimate when omitted")
	fl.BoolVar(&f.filter, "filter-outliers", true, "Drop observations outside median ± k*IQR")
	fl.Float64Var(&f.outlierFactor, "outlier-factor", hist.DefaultOutlierFactor, "Outlier threshold k in median ± k*IQR")
	fl.StringVar(&f.inputFormat, "input-format", config.FORMAT_CSV, "Input format: csv | json")
	fl.StringSliceVar(&f.jsonPaths, "json-path", nil, "gjson path selecting a numeric array (repeatable, json input only)")
	fl.StringVar(&f.delimiter, "delimiter", ",", "CSV field delimiter")
	fl.StringVar(&f.format, "format", config.FORMAT_JSON, "Output format: json | yaml | text")
	fl.Int32Var(&f.precision, "precision", 6, "Decimal places in output")
	fl.BoolVar(&f.stats, "stats", false, "Include the statistics snapshot")
	fl.Float64SliceVar(&f.percentiles, "percentile", nil, "Extra percentile in [0,1] to report (repeatable)")
	fl.StringVar(&f.logLevel, "log-level", "info", "Log level: debug | info | warn | error")
	fl.StringVar(&f.logFile, "log-file", "", "Also write log messages to this rotating file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the histogram version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "histogram "+Version)
			if Build != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Build Time: ", Build)
			}
		},
	})
	return rootCmd
}

// buildConfig 默认值 < 配置文件 < 命令行
func buildConfig(fs *pflag.FlagSet, f *cliFlags) (*config.Config, error) {
	c := config.Default()
	if f.configFile != "" {
		var err error
		if c, err = config.Load(f.configFile); err != nil {
			return nil, err
		}
	}
	if fs.Changed("column") {
		c.Input.Columns = f.columns
	}
	if fs.Changed("bins") {
		c.Histogram.BinCount = f.bins
	}
	if fs.Changed("filter-outliers") {
		c.Histogram.FilterOutliers = f.filter
	}
	if fs.Changed("outlier-factor") {
		c.Histogram.OutlierFactor = f.outlierFactor
	}
	if fs.Changed("input-format") {
		c.Input.Format = f.inputFormat
	}
	if fs.Changed("json-path") {
		c.Input.JSONPaths = f.jsonPaths
	}
	if fs.Changed("delimiter") {
		c.Input.Delimiter = f.delimiter
	}
	if fs.Changed("format") {
		c.Output.Format = f.format
	}
	if fs.Changed("precision") {
		c.Output.Precision = f.precision
	}
	if fs.Changed("stats") {
		c.Output.Stats = f.stats
	}
	if fs.Changed("percentile") {
		c.Histogram.Percentiles = f.percentiles
	}
	if fs.Changed("log-level") {
		c.Log.Level = f.logLevel
	}
	if fs.Changed("log-file") {
		c.Log.File = f.logFile
	}
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func run(cmd *cobra.Command, path string, f *cliFlags) error {
	c, err := buildConfig(cmd.Flags(), f)
	if err != nil {
		return err
	}
	if err := staticLog.Init(c.Log); err != nil {
		return err
	}
	defer staticLog.Close()
	config.Store(c)

	cols, err := readColumns(path, c)
	if err != nil {
		return err
	}
	// --bins 显式给出 0 时按单箱处理; 配置文件里的 0 表示自动估计
	explicitBins := cmd.Flags().Changed("bins") || c.Histogram.BinCount > 0

	reports, failed := buildReports(cols, c, explicitBins)
	if err := presenter.Write(cmd.OutOrStdout(), reports, presenter.Options{
		Format:    c.Output.Format,
		Precision: c.Output.Precision,
	}); err != nil {
		return err
	}
	if failed == len(cols) {
		return errorx.Newf(errCode.INVALID_VALUE, "none of %d columns produced a histogram", len(cols))
	}
	return nil
}

func readColumns(path string, c *config.Config) ([]loader.Column, error) {
	rc, err := loader.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readFrom(rc, c)
}

func readFrom(r io.Reader, c *config.Config) ([]loader.Column, error) {
	switch c.Input.Format {
	case config.FORMAT_JSON:
		return loader.ReadJSON(r, c.Input.JSONPaths)
	default:
		return loader.ReadCSV(r, loader.CSVOptions{
			Delimiter: c.DelimiterRune(),
			Columns:   c.Input.Columns,
		})
	}
}

// buildReports 按列构建直方图, 单列失败只记录并继续
func buildReports(cols []loader.Column, c *config.Config, explicitBins bool) ([]presenter.Report, int) {
	opts := []hist.Option{
		hist.WithFilterOutliers(c.Histogram.FilterOutliers),
		hist.WithOutlierFactor(c.Histogram.OutlierFactor),
	}
	if explicitBins {
		opts = append(opts, hist.WithBinCount(c.Histogram.BinCount))
	}

	reports := make([]presenter.Report, 0, len(cols))
	failed := 0
	for _, col := range cols {
		log := staticLog.WithField("column", col.Name)
		if col.Skipped > 0 {
			log.Warnf("skipped %d non-numeric values", col.Skipped)
		}
		h, err := hist.NewHistogram(col.Values, opts...)
		if err == nil {
			var rep presenter.Report
			if rep, err = presenter.NewReport(col.Name, h, c.Histogram.Percentiles, c.Output.Stats); err == nil {
				s := h.Stats()
				log.Infof("n=%d outliers=%d bins=%d width=%g", s.N, s.RawN-s.N, s.BinCount, s.BinWidth)
				reports = append(reports, rep)
				continue
			}
		}
		failed++
		log.WithField("code", errorx.CodeOf(err)).Warnf("skipped: %v", err)
		reports = append(reports, presenter.ErrorReport(col.Name, err))
	}
	return reports, failed
}
