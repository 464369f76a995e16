package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"
	"binstat/infra/observe/log/staticLog"

	"github.com/tidwall/gjson"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	staticLog.SetOutput(io.Discard)
	defer staticLog.SetOutput(os.Stderr)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const data = `x,flat,name
0,5,a
1,5,b
2,5,c
3,5,d
4,5,e
5,5,f
6,5,g
7,5,h
8,5,i
9,5,j
`

func TestRunSkipsFailingColumns(t *testing.T) {
	path := writeFile(t, "data.csv", data)
	out, err := execute(t, "--bins", "5", "--stats", "--percentile", "0.5", "--log-level", "error", path)
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.Get(out, "x.histogram.4.count").Int(); got != 2 {
		t.Fatalf("x bin 4 count = %d\n%s", got, out)
	}
	if got := gjson.Get(out, "x.stats.bin_width").String(); got != "1.8" {
		t.Fatalf("x width = %s", got)
	}
	if got := gjson.Get(out, "x.percentiles.p50").String(); got != "4.5" {
		t.Fatalf("x p50 = %s", got)
	}
	// 全部相等 -> 宽度为 0; 非数值列 -> 空输入
	if !strings.Contains(gjson.Get(out, "flat.error").String(), "DEGENERATE_BIN_WIDTH") {
		t.Fatalf("flat error = %q", gjson.Get(out, "flat.error").String())
	}
	if !strings.Contains(gjson.Get(out, "name.error").String(), "EMPTY_VALUE") {
		t.Fatalf("name error = %q", gjson.Get(out, "name.error").String())
	}
}

func TestRunSelectedColumnAutoBins(t *testing.T) {
	path := writeFile(t, "data.csv", data)
	out, err := execute(t, "--column", "x", "--format", "text", "--precision", "2", path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "flat") {
		t.Fatalf("unselected column in output:\n%s", out)
	}
	// Freedman–Diaconis: width = 9/10^(1/3) ≈ 4.177, 3 个箱, 计数 5/4/1
	rows := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		rows[strings.Join(strings.Fields(line), " ")] = true
	}
	for _, want := range []string{"0 0.00 4.18 5", "1 4.18 8.35 4", "2 8.35 12.53 1"} {
		if !rows[want] {
			t.Fatalf("missing row %q in:\n%s", want, out)
		}
	}
}

func TestRunAllColumnsFail(t *testing.T) {
	path := writeFile(t, "data.csv", data)
	_, err := execute(t, "--column", "flat", path)
	if !errorx.Is(err, errCode.INVALID_VALUE) {
		t.Fatalf("expected INVALID_VALUE, got %v", err)
	}
}

func TestRunConfigFileAndOverride(t *testing.T) {
	csvPath := writeFile(t, "data.csv", strings.ReplaceAll(data, ",", ";"))
	cfgPath := writeFile(t, "histogram.yaml", `
histogram:
  bin_count: 10
input:
  delimiter: ";"
  columns: [x]
output:
  format: yaml
`)
	out, err := execute(t, "--config", cfgPath, "--format", "json", csvPath)
	if err != nil {
		t.Fatal(err)
	}
	// 配置文件给 10 个箱, 命令行把输出改成 json
	if n := len(gjson.Get(out, "x.histogram").Map()); n != 10 {
		t.Fatalf("bins = %d\n%s", n, out)
	}
}

func TestRunJSONInput(t *testing.T) {
	path := writeFile(t, "data.json", `{"values":[0,1,2,3,"n/a"]}`)
	out, err := execute(t, "--input-format", "json", "--json-path", "values", "--bins", "2", path)
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.Get(out, "values.histogram.1.count").Int(); got != 2 {
		t.Fatalf("count = %d\n%s", got, out)
	}
}

func TestRunBadFlags(t *testing.T) {
	path := writeFile(t, "data.csv", data)
	if _, err := execute(t, "--format", "xml", path); !errorx.Is(err, errCode.CONFIG_ERROR) {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
	if _, err := execute(t, filepath.Join(t.TempDir(), "missing.csv")); !errorx.Is(err, errCode.IO_ERROR) {
		t.Fatalf("expected IO_ERROR, got %v", err)
	}
	if _, err := execute(t); err == nil {
		t.Fatal("missing input file should fail")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "histogram ") {
		t.Fatalf("got %q", out)
	}
}
