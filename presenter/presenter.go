// 输出直方图结果, 数值按精度四舍五入后再序列化
package presenter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"binstat/hist"
	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Report 单列结果; Error 非空时其余字段为空
type Report struct {
	Column      string
	Histogram   map[int]hist.Bin
	Stats       *hist.Stats
	Percentiles map[string]float64 // "p25" -> value
	Outliers    int
	Error       string
}

type Options struct {
	Format    string // json | yaml | text
	Precision int32
}

func NewReport(name string, h *hist.Histogram, percentiles []float64, withStats bool) (Report, error) {
	rep := Report{Column: name, Histogram: h.Histogram(), Outliers: len(h.Outliers())}
	if withStats {
		s := h.Stats()
		rep.Stats = &s
	}
	if len(percentiles) > 0 {
		rep.Percentiles = make(map[string]float64, len(percentiles))
		for _, p := range percentiles {
			v, err := h.Percentile(p)
			if err != nil {
				return Report{}, err
			}
			rep.Percentiles[PercentileKey(p)] = v
		}
	}
	return rep, nil
}

// ErrorReport 列处理失败时的占位结果
func ErrorReport(name string, err error) Report {
	return Report{Column: name, Error: err.Error()}
}

// PercentileKey 0.25 -> "p25", 0.999 -> "p99.9"
func PercentileKey(p float64) string {
	return "p" + strconv.FormatFloat(p*100, 'f', -1, 64)
}

func Write(w io.Writer, reports []Report, opt Options) error {
	switch strings.ToLower(opt.Format) {
	case "json", "":
		return writeJSON(w, reports, opt.Precision)
	case "yaml":
		return writeYAML(w, reports, opt.Precision)
	case "text":
		return writeText(w, reports, opt.Precision)
	default:
		return errorx.Newf(errCode.INVALID_VALUE, "unknown output format %q", opt.Format)
	}
}

// -------------------------- 结构化输出 --------------------------

type binOut struct {
	Min   json.Number `json:"min"`
	Max   json.Number `json:"max"`
	Count int         `json:"count"`
}

type statsOut struct {
	Median   json.Number `json:"median"`
	IQR      json.Number `json:"iqr"`
	Minimum  json.Number `json:"minimum"`
	Maximum  json.Number `json:"maximum"`
	BinWidth json.Number `json:"bin_width"`
	BinCount int         `json:"bin_count"`
	N        int         `json:"n"`
	RawN     int         `json:"raw_n"`
	Mean     json.Number `json:"mean"`
	StdDev   json.Number `json:"std_dev"`
	Filtered bool        `json:"filtered"`
}

type reportOut struct {
	Histogram   map[string]binOut      `json:"histogram,omitempty"`
	Stats       *statsOut              `json:"stats,omitempty"`
	Percentiles map[string]json.Number `json:"percentiles,omitempty"`
	Outliers    int                    `json:"outliers,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// round 用 decimal 做十进制舍入, 避免 1.8000000000000003 这类输出
func round(v float64, precision int32) json.Number {
	return json.Number(decimal.NewFromFloat(v).Round(precision).String())
}

func toOut(r Report, precision int32) reportOut {
	out := reportOut{Outliers: r.Outliers, Error: r.Error}
	if r.Histogram != nil {
		out.Histogram = make(map[string]binOut, len(r.Histogram))
		for i, b := range r.Histogram {
			out.Histogram[strconv.Itoa(i)] = binOut{
				Min:   round(b.Min, precision),
				Max:   round(b.Max, precision),
				Count: b.Count,
			}
		}
	}
	if s := r.Stats; s != nil {
		out.Stats = &statsOut{
			Median:   round(s.Median, precision),
			IQR:      round(s.IQR, precision),
			Minimum:  round(s.Minimum, precision),
			Maximum:  round(s.Maximum, precision),
			BinWidth: round(s.BinWidth, precision),
			BinCount: s.BinCount,
			N:        s.N,
			RawN:     s.RawN,
			Mean:     round(s.Mean, precision),
			StdDev:   round(s.StdDev, precision),
			Filtered: s.Filtered,
		}
	}
	if len(r.Percentiles) > 0 {
		out.Percentiles = make(map[string]json.Number, len(r.Percentiles))
		for k, v := range r.Percentiles {
			out.Percentiles[k] = round(v, precision)
		}
	}
	return out
}

func writeJSON(w io.Writer, reports []Report, precision int32) error {
	doc := make(map[string]reportOut, len(reports))
	for _, r := range reports {
		doc[r.Column] = toOut(r, precision)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return errorx.Wrap(err, errCode.IO_ERROR, "write json")
	}
	return nil
}

func writeYAML(w io.Writer, reports []Report, precision int32) error {
	// 顶层按输入列顺序输出
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, r := range reports {
		var val yaml.Node
		if err := val.Encode(toYAML(r, precision)); err != nil {
			return errorx.Wrap(err, errCode.IO_ERROR, "encode yaml")
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Column}, &val)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return errorx.Wrap(err, errCode.IO_ERROR, "write yaml")
	}
	return enc.Close()
}

type yamlReport struct {
	Histogram   map[int]hist.Bin   `yaml:"histogram,omitempty"`
	Stats       *hist.Stats        `yaml:"stats,omitempty"`
	Percentiles map[string]float64 `yaml:"percentiles,omitempty"`
	Outliers    int                `yaml:"outliers,omitempty"`
	Error       string             `yaml:"error,omitempty"`
}

func roundFloat(v float64, precision int32) float64 {
	return decimal.NewFromFloat(v).Round(precision).InexactFloat64()
}

func toYAML(r Report, precision int32) yamlReport {
	y := yamlReport{Outliers: r.Outliers, Error: r.Error}
	if r.Histogram != nil {
		y.Histogram = make(map[int]hist.Bin, len(r.Histogram))
		for i, b := range r.Histogram {
			y.Histogram[i] = hist.Bin{
				Min:   roundFloat(b.Min, precision),
				Max:   roundFloat(b.Max, precision),
				Count: b.Count,
			}
		}
	}
	if r.Stats != nil {
		s := *r.Stats
		s.Median = roundFloat(s.Median, precision)
		s.IQR = roundFloat(s.IQR, precision)
		s.Minimum = roundFloat(s.Minimum, precision)
		s.Maximum = roundFloat(s.Maximum, precision)
		s.BinWidth = roundFloat(s.BinWidth, precision)
		s.Mean = roundFloat(s.Mean, precision)
		s.StdDev = roundFloat(s.StdDev, precision)
		y.Stats = &s
	}
	if r.Percentiles != nil {
		y.Percentiles = make(map[string]float64, len(r.Percentiles))
		for k, v := range r.Percentiles {
			y.Percentiles[k] = roundFloat(v, precision)
		}
	}
	return y
}

// -------------------------- 文本表格 --------------------------

func writeText(w io.Writer, reports []Report, precision int32) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for n, r := range reports {
		if n > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, r.Column)
		if r.Error != "" {
			fmt.Fprintf(tw, "  error: %s\n", r.Error)
			continue
		}
		fmt.Fprintln(tw, "  bin\tmin\tmax\tcount\t")
		keys := make([]int, 0, len(r.Histogram))
		for i := range r.Histogram {
			keys = append(keys, i)
		}
		sort.Ints(keys)
		for _, i := range keys {
			b := r.Histogram[i]
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\t\n", i,
				decimal.NewFromFloat(b.Min).StringFixed(precision),
				decimal.NewFromFloat(b.Max).StringFixed(precision),
				b.Count)
		}
		if s := r.Stats; s != nil {
			fmt.Fprintf(tw, "  median=%s iqr=%s width=%s bins=%d n=%d/%d\n",
				decimal.NewFromFloat(s.Median).StringFixed(precision),
				decimal.NewFromFloat(s.IQR).StringFixed(precision),
				decimal.NewFromFloat(s.BinWidth).StringFixed(precision),
				s.BinCount, s.N, s.RawN)
		}
		if len(r.Percentiles) > 0 {
			keys := make([]string, 0, len(r.Percentiles))
			for k := range r.Percentiles {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool {
				a, _ := strconv.ParseFloat(keys[i][1:], 64)
				b, _ := strconv.ParseFloat(keys[j][1:], 64)
				return a < b
			})
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = k + "=" + decimal.NewFromFloat(r.Percentiles[k]).StringFixed(precision)
			}
			fmt.Fprintf(tw, "  %s\n", strings.Join(parts, " "))
		}
	}
	if err := tw.Flush(); err != nil {
		return errorx.Wrap(err, errCode.IO_ERROR, "write text")
	}
	return nil
}
