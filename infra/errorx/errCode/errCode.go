package errCode

// 错误码, 调用方按码判断错误类别, 不要比较 message
type Code int

const (
	UNKNOWN              Code = iota // "unknown"
	EMPTY_VALUE                      // 空输入
	INVALID_VALUE                    // 参数不合法
	NAN_VALUE                        // 输入含 NaN / Inf
	DEGENERATE_BIN_WIDTH             // 分箱宽度 <= 0
	INVALID_BIN_COUNT                // 分箱数不合法
	INVALID_PERCENTILE               // p 不在 [0,1]
	PARSE_ERROR                      // 数据解析失败
	IO_ERROR                         // 读写失败
	CONFIG_ERROR                     // 配置错误
)

func (c Code) String() string {
	switch c {
	case EMPTY_VALUE:
		return "EMPTY_VALUE"
	case INVALID_VALUE:
		return "INVALID_VALUE"
	case NAN_VALUE:
		return "NAN_VALUE"
	case DEGENERATE_BIN_WIDTH:
		return "DEGENERATE_BIN_WIDTH"
	case INVALID_BIN_COUNT:
		return "INVALID_BIN_COUNT"
	case INVALID_PERCENTILE:
		return "INVALID_PERCENTILE"
	case PARSE_ERROR:
		return "PARSE_ERROR"
	case IO_ERROR:
		return "IO_ERROR"
	case CONFIG_ERROR:
		return "CONFIG_ERROR"
	default:
		return "UNKNOWN"
	}
}
