// Package humanize 将时长转换为可读文本，例如 "1 hour, 30 minutes"
//
// 仅使用小时与分钟两个单位：不输出秒和天，超过 24 小时仍以小时计。
package humanize

import (
	"strconv"
	"strings"
	"time"
)

type unit struct {
	singular string
	plural   string
	size     time.Duration
}

var hourMinute = []unit{
	{"hour", "hours", time.Hour},
	{"minute", "minutes", time.Minute},
}

// Minutes 将分钟数格式化为可读文本
// 等价于 Duration(minutes * 60000ms)
func Minutes(minutes int) string {
	return Duration(time.Duration(minutes) * time.Minute)
}

// Duration 以小时、分钟为单位格式化时长
// 值为 0 的单位被省略；全部为 0 时输出最小单位，即 "0 minutes"
// 负数按绝对值处理，不足一分钟的部分作为分钟的小数保留
func Duration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	parts := make([]string, 0, len(hourMinute))
	rest := d
	for i, u := range hourMinute {
		last := i == len(hourMinute)-1
		if last {
			value := float64(rest) / float64(u.size)
			if value != 0 {
				parts = append(parts, formatUnit(value, u))
			}
			break
		}
		n := rest / u.size
		rest -= n * u.size
		if n != 0 {
			parts = append(parts, formatUnit(float64(n), u))
		}
	}

	if len(parts) == 0 {
		return formatUnit(0, hourMinute[len(hourMinute)-1])
	}
	return strings.Join(parts, ", ")
}

func formatUnit(value float64, u unit) string {
	word := u.plural
	if value == 1 {
		word = u.singular
	}
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + word
}
