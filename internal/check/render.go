package check

import (
	"fmt"
	"strings"
)

// RenderSummaryCLI 将检查结果渲染为适合 CLI 输出的文本，失败项的详情缩进显示
func RenderSummaryCLI(summary Summary) string {
	var b strings.Builder
	b.WriteString("================ 环境检查开始 ================\n")

	failed := 0
	for _, it := range summary.Items {
		mark := "✅"
		if !it.OK {
			mark = "❌"
			failed++
		}
		fmt.Fprintf(&b, "[%s] %s：%s\n", mark, it.Name, it.Message)
		if strings.TrimSpace(it.Details) != "" {
			b.WriteString(indent(strings.TrimRight(it.Details, "\n"), "    "))
			b.WriteString("\n")
		}
	}

	if failed > 0 {
		fmt.Fprintf(&b, "共 %d 项，失败 %d 项\n", len(summary.Items), failed)
	}
	b.WriteString("================ 环境检查结束 ================")
	return b.String()
}

// indent 为每一行加上前缀
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
