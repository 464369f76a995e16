// histogram 命令行: 对 CSV / JSON 中的数值列做直方图
package main

import (
	"os"

	"binstat/infra/observe/log/staticLog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		staticLog.Errorf("%v", err)
		os.Exit(1)
	}
}
