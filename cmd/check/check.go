package check

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"

	"coursepage/internal/check"
	"coursepage/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand 创建 check 子命令：
// - 端口占用检查
// - 课程加载与完整性检查
// - 服务健康检查（端口未监听不判失败）
func NewCommand(staticFiles fs.FS) *cobra.Command {
	// 不在命令构造阶段加载配置，避免在执行 help/-h 时触发配置加载
	var (
		host       string
		port       int
		coursesDir string
		useEmbed   bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "检查本地环境（端口占用、课程加载、服务健康）",
		Long:  "检查本地环境：\n1) 指定端口是否被占用\n2) 课程资源加载与数据完整性\n3) 课程详情页服务运行与健康状态",
		RunE: func(cmd *cobra.Command, args []string) error {
			// 静默模式：检查期间不输出内部模块日志，结束后恢复
			log.SetOutput(io.Discard)
			defer log.SetOutput(os.Stderr)

			// Flags 通过环境变量覆盖配置，与 server 子命令的优先级一致
			if cmd.Flags().Changed("host") && host != "" {
				_ = os.Setenv("SERVER_HOST", host)
			}
			if cmd.Flags().Changed("port") && port != 0 {
				_ = os.Setenv("SERVER_PORT", strconv.Itoa(port))
			}
			if cmd.Flags().Changed("courses-dir") && coursesDir != "" {
				_ = os.Setenv("COURSE_DIR", coursesDir)
			}
			if cmd.Flags().Changed("courses-use-embed") {
				_ = os.Setenv("COURSES_USE_EMBED", strconv.FormatBool(useEmbed))
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("配置加载失败: %w", err)
			}

			summary := check.RunFromConfig(staticFiles, cfg)
			fmt.Fprintln(cmd.OutOrStdout(), check.RenderSummaryCLI(summary))

			// 如果任一检查失败，返回非零错误码
			if !summary.OK {
				return fmt.Errorf("环境检查存在失败项，请根据提示修复后重试")
			}
			return nil
		},
	}

	// Flags（仅在用户显式设置时覆盖配置）
	cmd.Flags().StringVar(&host, "host", "", "指定服务主机（默认从环境变量/配置读取）")
	cmd.Flags().IntVar(&port, "port", 0, "指定服务端口（默认从环境变量/配置读取）")
	cmd.Flags().StringVar(&coursesDir, "courses-dir", "", "课程目录（未设置时从配置读取）")
	cmd.Flags().BoolVar(&useEmbed, "courses-use-embed", false, "是否使用嵌入课程资源进行检查（未设置时从配置读取）")

	return cmd
}
