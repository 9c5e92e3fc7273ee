package server

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// 守护进程相关默认路径（相对当前工作目录）
const (
	pidFilePath   = "tmp/coursepage.pid" // PID 文件路径，用于确保唯一性
	daemonLogPath = "logs/daemon.log"    // 守护进程日志文件，重定向标准输出/错误
)

// filterDaemonFlags 过滤守护进程相关标志，子进程以前台模式运行
func filterDaemonFlags(args []string) []string {
	filtered := make([]string, 0, len(args))
	for _, a := range args {
		if a == "-d" || a == "--daemon" || a == "--daemon=true" {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}

// ensureDirForFile 确保文件所在目录存在
func ensureDirForFile(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// readPIDFromFile 从 PID 文件读取进程号
func readPIDFromFile(filePath string) (int, bool) {
	data, err := os.ReadFile(filePath)
	if err != nil || len(data) == 0 {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return pid, true
}

// writePID 写入 PID 到指定文件
func writePID(filePath string, pid int) error {
	if err := ensureDirForFile(filePath); err != nil {
		return err
	}
	return os.WriteFile(filePath, []byte(strconv.Itoa(pid)), 0o644)
}

// removePIDFile 删除 PID 文件（忽略错误）
func removePIDFile(filePath string) { _ = os.Remove(filePath) }
