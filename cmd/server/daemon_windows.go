//go:build windows

package server

import "fmt"

// isProcessRunning（Windows）始终返回 false
func isProcessRunning(_ int) bool {
	return false
}

// runAsDaemon（Windows）不支持 Setsid 风格的守护模式
func runAsDaemon(_ string, _ string, _ []string) error {
	return fmt.Errorf("守护进程模式在 Windows 未实现；请以服务或计划任务方式运行")
}
