package loader

import (
	"io"
	"math"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"

	"github.com/tidwall/gjson"
)

// ReadJSON 每个 gjson path 取一列, 例如 "rows.#.latency"
// path 命中单个数值时得到长度为 1 的列; 非数值元素跳过
func ReadJSON(r io.Reader, paths []string) ([]Column, error) {
	if len(paths) == 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "no json path given")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errorx.Wrap(err, errCode.IO_ERROR, "read json")
	}
	if len(b) == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "json input is empty")
	}
	if !gjson.ValidBytes(b) {
		return nil, errorx.New(errCode.PARSE_ERROR, "invalid json")
	}

	cols := make([]Column, 0, len(paths))
	for _, path := range paths {
		res := gjson.GetBytes(b, path)
		if !res.Exists() {
			return nil, errorx.Newf(errCode.INVALID_VALUE, "json path %q matched nothing", path)
		}
		col := Column{Name: path}
		items := []gjson.Result{res}
		if res.IsArray() {
			items = res.Array()
		}
		for _, it := range items {
			if it.Type != gjson.Number {
				col.Skipped++
				continue
			}
			v := it.Float()
			if math.IsNaN(v) || math.IsInf(v, 0) {
				col.Skipped++
				continue
			}
			col.Values = append(col.Values, v)
		}
		cols = append(cols, col)
	}
	return cols, nil
}
