// 数据加载: 从 CSV / JSON 中按列取出数值序列
// 与 numpy.genfromtxt(names=True, invalid_raise=False) 行为一致:
// 首行为列名, 无法解析的单元格跳过并计数
package loader

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"
	"binstat/infra/observe/log/staticLog"
)

// Column 一列数值观测
type Column struct {
	Name    string
	Values  []float64
	Skipped int // 跳过的非数值单元格
}

type CSVOptions struct {
	Delimiter rune     // 默认 ','
	Columns   []string // 为空则取全部列, 顺序同表头
}

// Open path 为 "-" 时读 stdin
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errorx.Wrap(err, errCode.IO_ERROR, "open input")
	}
	return f, nil
}

func ReadCSV(r io.Reader, opt CSVOptions) ([]Column, error) {
	cr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	cr.FieldsPerRecord = -1 // 字段数不对的行单独跳过, 不整体失败
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errorx.New(errCode.EMPTY_VALUE, "csv input has no header")
	}
	if err != nil {
		return nil, errorx.Wrap(err, errCode.PARSE_ERROR, "read csv header")
	}
	names := make([]string, len(header))
	pos := make(map[string]int, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
		if _, dup := pos[names[i]]; !dup {
			pos[names[i]] = i
		}
	}

	// 确定要取的列
	idx := make([]int, 0, len(names))
	if len(opt.Columns) == 0 {
		for i := range names {
			idx = append(idx, i)
		}
	} else {
		for _, name := range opt.Columns {
			i, ok := pos[strings.TrimSpace(name)]
			if !ok {
				return nil, errorx.Newf(errCode.INVALID_VALUE, "column %q not found in header %v", name, names)
			}
			idx = append(idx, i)
		}
	}

	cols := make([]Column, len(idx))
	for k, i := range idx {
		cols[k].Name = names[i]
	}

	line := 1
	badRows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				badRows++
				continue
			}
			return nil, errorx.Wrap(err, errCode.IO_ERROR, "read csv")
		}
		if len(rec) != len(names) {
			badRows++
			staticLog.Debugf("csv line %d: %d fields, want %d", line, len(rec), len(names))
			continue
		}
		for k, i := range idx {
			v, ok := parseCell(rec[i])
			if !ok {
				cols[k].Skipped++
				continue
			}
			cols[k].Values = append(cols[k].Values, v)
		}
	}
	if badRows > 0 {
		staticLog.Warnf("csv: skipped %d malformed rows", badRows)
	}
	return cols, nil
}

// parseCell 空串 / 非数值 / NaN / Inf 都视为缺失
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
