package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"

	"github.com/google/go-cmp/cmp"
)

const sample = `price, qty ,side
1.5,10,buy
2.5,,sell
NaN,7,buy
oops,8,sell
4,9
3.25,1e1,buy
`

func TestReadCSVAllColumns(t *testing.T) {
	cols, err := ReadCSV(strings.NewReader(sample), CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []Column{
		{Name: "price", Values: []float64{1.5, 2.5, 3.25}, Skipped: 2},
		{Name: "qty", Values: []float64{10, 7, 8, 10}, Skipped: 1},
		{Name: "side", Values: nil, Skipped: 5},
	}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
}

func TestReadCSVSelectedColumns(t *testing.T) {
	body := "a;b;c\n1;2;3\n4;5;6\n"
	cols, err := ReadCSV(strings.NewReader(body), CSVOptions{Delimiter: ';', Columns: []string{"c", " a"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []Column{
		{Name: "c", Values: []float64{3, 6}},
		{Name: "a", Values: []float64{1, 4}},
	}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}

	_, err = ReadCSV(strings.NewReader(body), CSVOptions{Delimiter: ';', Columns: []string{"z"}})
	if !errorx.Is(err, errCode.INVALID_VALUE) {
		t.Fatalf("expected INVALID_VALUE, got %v", err)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader(""), CSVOptions{}); !errorx.Is(err, errCode.EMPTY_VALUE) {
		t.Fatalf("expected EMPTY_VALUE, got %v", err)
	}
}

func TestReadJSON(t *testing.T) {
	body := `{"rows":[{"lat":1.5,"tag":"a"},{"lat":"x"},{"lat":3}],"total":42}`
	cols, err := ReadJSON(strings.NewReader(body), []string{"rows.#.lat", "total"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Column{
		{Name: "rows.#.lat", Values: []float64{1.5, 3}, Skipped: 1},
		{Name: "total", Values: []float64{42}},
	}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
}

func TestReadJSONErrors(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		paths []string
		code  errCode.Code
	}{
		{"no path", `[1,2]`, nil, errCode.INVALID_VALUE},
		{"empty", ``, []string{"@this"}, errCode.EMPTY_VALUE},
		{"invalid", `{"a":`, []string{"a"}, errCode.PARSE_ERROR},
		{"missing", `{"a":[1]}`, []string{"b"}, errCode.INVALID_VALUE},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(c.body), c.paths)
			if !errorx.Is(err, c.code) {
				t.Fatalf("expected %s, got %v", c.code, err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("x\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rc, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	cols, err := ReadCSV(rc, CSVOptions{})
	if err != nil || len(cols) != 1 || len(cols[0].Values) != 1 {
		t.Fatalf("cols=%v err=%v", cols, err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "nope.csv")); !errorx.Is(err, errCode.IO_ERROR) {
		t.Fatalf("expected IO_ERROR, got %v", err)
	}
}
