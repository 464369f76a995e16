package config

import (
	"os"
	"path/filepath"
	"testing"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"

	"github.com/google/go-cmp/cmp"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "histogram.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeYAML(t, `
histogram:
  bin_count: 12
  percentiles: [0.1, 0.9]
input:
  format: " CSV "
  columns: [" price ", "", "qty"]
  delimiter: ";"
output:
  format: YAML
log:
  level: DEBUG
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.Histogram.BinCount = 12
	want.Histogram.Percentiles = []float64{0.1, 0.9}
	want.Input.Columns = []string{"price", "qty"}
	want.Input.Delimiter = ";"
	want.Output.Format = FORMAT_YAML
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if c.DelimiterRune() != ';' {
		t.Fatalf("delimiter %q", c.DelimiterRune())
	}
	// 未出现的字段保持默认
	if !c.Histogram.FilterOutliers || c.Histogram.OutlierFactor != 3 {
		t.Fatalf("defaults lost: %+v", c.Histogram)
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"negative bins", "histogram: {bin_count: -2}"},
		{"zero factor", "histogram: {outlier_factor: 0}"},
		{"percentile", "histogram: {percentiles: [1.5]}"},
		{"input format", "input: {format: parquet}"},
		{"delimiter", "input: {delimiter: ';;'}"},
		{"output format", "output: {format: xml}"},
		{"precision", "output: {precision: 99}"},
		{"syntax", "histogram: [unclosed"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeYAML(t, c.body))
			if !errorx.Is(err, errCode.CONFIG_ERROR) {
				t.Fatalf("expected CONFIG_ERROR, got %v", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errorx.Is(err, errCode.IO_ERROR) {
		t.Fatalf("expected IO_ERROR, got %v", err)
	}
}

func TestInitAndGet(t *testing.T) {
	if Get() == nil {
		t.Fatal("Get must fall back to defaults")
	}
	path := writeYAML(t, "output: {format: text, precision: 2}")
	if err := Init(path); err != nil {
		t.Fatal(err)
	}
	defer Store(Default())

	c := Get()
	if c.Output.Format != FORMAT_TEXT || c.Output.Precision != 2 {
		t.Fatalf("got %+v", c.Output)
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
