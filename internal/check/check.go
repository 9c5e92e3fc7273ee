package check

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"coursepage/internal/catalog"
	"coursepage/internal/config"
	"coursepage/internal/logger"
	sql "coursepage/internal/sql"
)

// healthMarker /health 响应中用于识别本服务的关键字
const healthMarker = "Course Details"

// Item 单项检查结果
type Item struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Summary 检查汇总
type Summary struct {
	OK    bool   `json:"ok"`
	Items []Item `json:"items"`
}

// NewSummary 汇总检查项，任一失败则整体失败
func NewSummary(items []Item) Summary {
	ok := true
	for _, it := range items {
		if !it.OK {
			ok = false
		}
	}
	return Summary{OK: ok, Items: items}
}

// RunFromConfig 使用配置与课程来源（嵌入、磁盘或数据库）执行检查
func RunFromConfig(staticFiles fs.FS, cfg *config.Config) Summary {
	items := make([]Item, 0, 3)

	// 1) 端口占用
	portOK, portMsg, procInfo := PortOccupation(cfg.Server.Host, cfg.Server.Port)
	details := ""
	if !portOK && procInfo != "" {
		details = procInfo
	}
	items = append(items, Item{Name: fmt.Sprintf("端口占用 (%s:%d)", cfg.Server.Host, cfg.Server.Port), OK: portOK, Message: portMsg, Details: details})

	// 2) 课程加载与完整性
	courses, err := LoadCourses(staticFiles, cfg)
	if err != nil {
		items = append(items, Item{Name: "课程加载与完整性", OK: false, Message: fmt.Sprintf("课程加载失败：%v", err)})
	} else {
		coursesOK, coursesMsg := CatalogIntegrity(courses)
		items = append(items, Item{Name: "课程加载与完整性", OK: coursesOK, Message: coursesMsg})
	}

	// 3) 服务健康
	serviceOK, serviceMsg := ServiceHealth(cfg.Server.Host, cfg.Server.Port)
	items = append(items, Item{Name: fmt.Sprintf("服务健康检查 (%s:%d)", cfg.Server.Host, cfg.Server.Port), OK: serviceOK, Message: serviceMsg})

	return NewSummary(items)
}

// LoadCourses 按配置一次性读取课程
func LoadCourses(staticFiles fs.FS, cfg *config.Config) ([]*catalog.Course, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	quiet := logger.NewLogger(logger.ERROR)
	var db catalog.Querier
	if cfg.Catalog.Source == config.SourcePostgres {
		driver := &sql.Driver{}
		if err := driver.EnsureReady(ctx, cfg.Catalog.DatabaseURL); err != nil {
			return nil, err
		}
		defer driver.Close()
		db = driver.Pool()
	}

	src, err := catalog.Open(cfg.Catalog, staticFiles, db, quiet)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

// PortOccupation 检查端口占用
func PortOccupation(host string, port int) (bool, string, string) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, 800*time.Millisecond)
	if err != nil {
		return true, "端口未被占用，可用", ""
	}
	_ = conn.Close()

	if IsPortUsedByCurrentService(host, port) {
		return true, "端口被本服务使用（正常）", ""
	}

	procInfo, lerr := ListPortProcesses(port)
	if lerr != nil {
		return false, "端口已被占用（进程信息获取失败，可能未安装 lsof）", ""
	}
	if procInfo == "" {
		return false, "端口已被占用（但未能获取到进程信息）", ""
	}
	return false, "端口已被占用", procInfo
}

// IsPortUsedByCurrentService 通过 /health 识别是否为本服务
func IsPortUsedByCurrentService(host string, port int) bool {
	url := fmt.Sprintf("http://%s:%d/health", host, port)
	client := &http.Client{Timeout: 800 * time.Millisecond}
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var payload struct{ Status, Message string }
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false
	}
	return strings.ToLower(payload.Status) == "ok" && strings.Contains(payload.Message, healthMarker)
}

// ListPortProcesses 使用 lsof 列出监听进程（最佳努力）
func ListPortProcesses(port int) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "lsof", "-i", fmt.Sprintf(":%d", port), "-sTCP:LISTEN", "-n", "-P")
	out, _ := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("查询端口占用超时")
	}
	if len(out) == 0 {
		return "", nil
	}
	return string(out), nil
}

// CatalogIntegrity 课程数据完整性检查
func CatalogIntegrity(courses []*catalog.Course) (bool, string) {
	if len(courses) == 0 {
		return false, "未找到任何课程，请检查课程目录、嵌入资源或数据库"
	}
	problems := catalog.Validate(courses)
	if len(problems) > 0 {
		lines := make([]string, 0, len(problems))
		for _, p := range problems {
			lines = append(lines, p.String())
		}
		return false, "课程加载成功，但存在数据完整性问题：\n" + strings.Join(lines, "\n")
	}
	return true, fmt.Sprintf("课程加载成功，共 %d 门，数据完整性检查通过", len(courses))
}

// ServiceHealth 调用 /health 检查服务状态
func ServiceHealth(host string, port int) (bool, string) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, 800*time.Millisecond)
	if err != nil {
		return true, "服务未运行"
	}
	_ = conn.Close()

	url := fmt.Sprintf("http://%s:%d/health", host, port)
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return false, fmt.Sprintf("服务已监听，但健康端点访问失败：%v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("服务已监听，但健康端点返回非 200 状态码：%d", resp.StatusCode)
	}
	return true, "服务正在运行且健康（/health 返回 200）"
}
