package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"
	"binstat/infra/observe/log/staticLog"

	"gopkg.in/yaml.v3"
)

const (
	FORMAT_CSV  = "csv"
	FORMAT_JSON = "json"
	FORMAT_YAML = "yaml"
	FORMAT_TEXT = "text"
)

type Config struct {
	Histogram HistogramConfig     `yaml:"histogram"`
	Input     InputConfig         `yaml:"input"`
	Output    OutputConfig        `yaml:"output"`
	Log       staticLog.LogConfig `yaml:"log"`
}

type HistogramConfig struct {
	BinCount       int       `yaml:"bin_count"` // 0: Freedman–Diaconis 自动估计
	FilterOutliers bool      `yaml:"filter_outliers"`
	OutlierFactor  float64   `yaml:"outlier_factor"`
	Percentiles    []float64 `yaml:"percentiles"`
}

type InputConfig struct {
	Format    string   `yaml:"format"` // csv | json
	Columns   []string `yaml:"columns"`
	Delimiter string   `yaml:"delimiter"`
	JSONPaths []string `yaml:"json_paths"` // gjson path, 每个 path 一列
}

type OutputConfig struct {
	Format    string `yaml:"format"` // json | yaml | text
	Precision int32  `yaml:"precision"`
	Stats     bool   `yaml:"stats"`
}

// 用 atomic.Value 存当前配置, 读取无锁
var cfgValue atomic.Value // stores *Config

func Default() *Config {
	return &Config{
		Histogram: HistogramConfig{
			FilterOutliers: true,
			OutlierFactor:  3,
		},
		Input: InputConfig{
			Format:    FORMAT_CSV,
			Delimiter: ",",
		},
		Output: OutputConfig{
			Format:    FORMAT_JSON,
			Precision: 6,
		},
		Log: staticLog.LogConfig{
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 2,
			MaxAge:     14,
		},
	}
}

// Load 默认值之上叠加 yaml 文件, 未出现的字段保持默认
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errorx.Wrap(err, errCode.IO_ERROR, "read yaml")
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errorx.Wrap(err, errCode.CONFIG_ERROR, "unmarshal yaml")
	}
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// Normalize 规范化: 格式小写, 列名去空格; 然后校验
func (c *Config) Normalize() error {
	c.Input.Format = strings.ToLower(strings.TrimSpace(c.Input.Format))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))

	cols := make([]string, 0, len(c.Input.Columns))
	for _, col := range c.Input.Columns {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	c.Input.Columns = cols
	return c.Validate()
}

func (c *Config) Validate() error {
	h := c.Histogram
	if h.BinCount < 0 {
		return errorx.Newf(errCode.CONFIG_ERROR, "invalid bin_count: %d", h.BinCount)
	}
	if math.IsNaN(h.OutlierFactor) || math.IsInf(h.OutlierFactor, 0) || h.OutlierFactor <= 0 {
		return errorx.Newf(errCode.CONFIG_ERROR, "invalid outlier_factor: %v", h.OutlierFactor)
	}
	for _, p := range h.Percentiles {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return errorx.Newf(errCode.CONFIG_ERROR, "invalid percentile: %v", p)
		}
	}

	switch c.Input.Format {
	case FORMAT_CSV:
		if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
			return errorx.Newf(errCode.CONFIG_ERROR, "delimiter must be a single character, got %q", c.Input.Delimiter)
		}
	case FORMAT_JSON:
	default:
		return errorx.Newf(errCode.CONFIG_ERROR, "unknown input format: %q", c.Input.Format)
	}

	switch c.Output.Format {
	case FORMAT_JSON, FORMAT_YAML, FORMAT_TEXT:
	default:
		return errorx.Newf(errCode.CONFIG_ERROR, "unknown output format: %q", c.Output.Format)
	}
	if c.Output.Precision < 0 || c.Output.Precision > 15 {
		return errorx.Newf(errCode.CONFIG_ERROR, "precision must be in [0,15], got %d", c.Output.Precision)
	}
	return nil
}

// DelimiterRune csv 分隔符
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Input.Delimiter)
	return r
}

func Init(path string) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	Store(c)
	return nil
}

func Store(c *Config) { cfgValue.Store(c) }

// Get 当前配置, 未初始化时返回默认配置
func Get() *Config {
	cAny := cfgValue.Load()
	if cAny == nil {
		return Default()
	}
	return cAny.(*Config)
}

func (c *Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(b)
}
