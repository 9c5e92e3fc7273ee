package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"coursepage/internal/api"
	"coursepage/internal/catalog"
	"coursepage/internal/config"
	"coursepage/internal/logger"
	sql "coursepage/internal/sql"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

// Run 是 server 子命令的入口
// 参数:
//   - staticFiles: 嵌入的课程文件（来自上层 main 的 go:embed）
//   - daemon: 是否以守护进程模式运行
func Run(staticFiles fs.FS, daemon bool) error {
	// 1) 加载 .env（不强制）
	_ = godotenv.Load()

	// 2) 守护进程分支（仅父进程执行）
	if daemon && os.Getenv("DAEMON_MODE") != "1" {
		return startDaemon()
	}

	// 3) 业务主流程：加载配置、构建依赖、启动 HTTP 服务
	cfg, err := config.Load()
	if err != nil {
		// 创建临时logger用于配置加载失败的错误输出
		tempLogger := logger.NewLogger(logger.ERROR)
		tempLogger.Error("Failed to load configuration: %v", err)
		return err
	}

	appLogger := logger.NewLogger(logger.ParseLogLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 课程来源（嵌入/磁盘/数据库）
	driver := &sql.Driver{}
	defer driver.Close()
	src, err := openSource(ctx, staticFiles, cfg, driver, appLogger)
	if err != nil {
		appLogger.Error("Failed to open course catalog: %v", err)
		return err
	}

	// 目录先以未加载状态提供服务，首次加载完成后页面随之更新
	cat := catalog.New()
	reloader := catalog.NewReloader(src, cat, cfg.Catalog.ReloadEvery(), appLogger)
	go func() {
		if _, err := reloader.Refresh(ctx); err != nil {
			appLogger.Warn("Warning: failed to load courses: %v", err)
		}
		if cfg.Catalog.Reload {
			appLogger.Info("Catalog hot reload enabled, interval %s", cfg.Catalog.ReloadEvery())
			reloader.Run(ctx)
		}
	}()

	apiHandler := api.NewHandler(cat, nil, appLogger, cfg)
	r := newEngine(apiHandler, appLogger)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      withCORS(r, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	appLogger.Info("Course Details service starting on %s", addr)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Error("Failed to start server: %v", err)
			return err
		}
	case <-ctx.Done():
	}
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// 实时会话是被劫持的连接，Shutdown 不会关闭它们
	apiHandler.Sessions().CloseAll()
	_ = srv.Shutdown(shutdownCtx)

	if os.Getenv("DAEMON_MODE") == "1" {
		removePIDFile(pidFilePath)
	}
	appLogger.Info("Server exited")
	return nil
}

// openSource 按配置创建课程来源，postgres 来源会先建立连接并确保表存在
func openSource(ctx context.Context, staticFiles fs.FS, cfg *config.Config, driver *sql.Driver, appLogger *logger.Logger) (catalog.Source, error) {
	var db catalog.Querier
	if cfg.Catalog.Source == config.SourcePostgres {
		if err := driver.EnsureReady(ctx, cfg.Catalog.DatabaseURL); err != nil {
			return nil, err
		}
		if err := driver.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		db = driver.Pool()
	}
	return catalog.Open(cfg.Catalog, staticFiles, db, appLogger)
}

// newEngine 构建 gin 引擎并注册全部路由
func newEngine(apiHandler *api.Handler, appLogger *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.Compression())

	apiHandler.SetupRoutes(r)

	// 调试：列出所有已注册路由
	for _, ri := range r.Routes() {
		appLogger.Debug("Route registered: %s %s", ri.Method, ri.Path)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.String(http.StatusNotFound, "page not found")
	})
	return r
}

// withCORS 为前端开发服务器等跨域来源放行只读请求
func withCORS(h http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedHeaders:   []string{"Content-Type"},
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowCredentials: true,
	})
	return c.Handler(h)
}

// startDaemon 检查重复实例后以守护进程模式重新启动自身
func startDaemon() error {
	if pid, ok := readPIDFromFile(pidFilePath); ok && isProcessRunning(pid) {
		return fmt.Errorf("已有守护进程在运行(PID=%d)，若需重启，请先停止或清理PID文件: %s", pid, pidFilePath)
	}
	removePIDFile(pidFilePath)
	if err := runAsDaemon(pidFilePath, daemonLogPath, os.Args[1:]); err != nil {
		return fmt.Errorf("守护进程启动失败: %w", err)
	}
	return nil
}

// NewCommand 定义 server 子命令（Cobra 风格）
// Flags 仅在用户显式设置时覆盖环境变量，实现“Flags > Env > 配置文件 > 默认值”
func NewCommand(staticFiles fs.FS) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "启动课程详情页服务",
		Long:  "启动课程详情页服务：HTML 页面、JSON 接口与 WebSocket 实时会话",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyFlagEnv(cmd, "host", "SERVER_HOST")
			applyFlagEnv(cmd, "port", "SERVER_PORT")
			applyFlagEnv(cmd, "log-level", "LOG_LEVEL")
			applyFlagEnv(cmd, "log-format", "LOG_FORMAT")
			applyFlagEnv(cmd, "courses-dir", "COURSE_DIR")
			applyFlagEnv(cmd, "catalog-source", "CATALOG_SOURCE")

			daemon, _ := cmd.Flags().GetBool("daemon")
			return Run(staticFiles, daemon)
		},
	}

	cmd.Flags().BoolP("daemon", "d", false, "以守护进程模式运行")
	cmd.Flags().String("host", "", "服务器监听地址（默认从环境变量 SERVER_HOST 或默认值读取）")
	cmd.Flags().Int("port", 0, "服务器端口（默认从环境变量 SERVER_PORT 或默认值读取）")
	cmd.Flags().String("log-level", "info", "日志级别: debug|info|warn|error（默认从环境变量 LOG_LEVEL 或默认值读取）")
	cmd.Flags().String("log-format", "text", "日志格式: json|text（默认从环境变量 LOG_FORMAT 或默认值读取）")
	cmd.Flags().String("courses-dir", "", "课程目录（默认从环境变量 COURSE_DIR 或默认值读取）")
	cmd.Flags().String("catalog-source", "", "课程来源: fs|postgres（默认从环境变量 CATALOG_SOURCE 或默认值读取）")

	return cmd
}

// applyFlagEnv 仅当 flag 被显式设置时写入对应环境变量
func applyFlagEnv(cmd *cobra.Command, flag, env string) {
	if !cmd.Flags().Changed(flag) {
		return
	}
	value := cmd.Flags().Lookup(flag).Value.String()
	_ = os.Setenv(env, value)
}
