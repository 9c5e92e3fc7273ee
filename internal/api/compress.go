package api

import (
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// brotliWriter 将响应体写入 brotli 压缩流
type brotliWriter struct {
	gin.ResponseWriter
	writer *brotli.Writer
}

func (w *brotliWriter) Write(data []byte) (int, error) {
	return w.writer.Write(data)
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.writer.Write([]byte(s))
}

func (w *brotliWriter) WriteHeader(code int) {
	// 压缩后长度未知
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

// Compression 客户端接受 br 编码时压缩响应体
// WebSocket 升级请求与 HEAD 请求不做处理
func Compression() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "HEAD" || websocket.IsWebSocketUpgrade(c.Request) || !acceptsBrotli(c.GetHeader("Accept-Encoding")) {
			c.Next()
			return
		}

		c.Header("Content-Encoding", "br")
		c.Header("Vary", "Accept-Encoding")

		bw := brotli.NewWriterLevel(c.Writer, brotli.DefaultCompression)
		c.Writer = &brotliWriter{ResponseWriter: c.Writer, writer: bw}
		defer bw.Close()

		c.Next()
	}
}

// acceptsBrotli 解析 Accept-Encoding，br 未出现或 q=0 时返回 false
func acceptsBrotli(header string) bool {
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		if strings.TrimSpace(fields[0]) != "br" {
			continue
		}
		for _, param := range fields[1:] {
			param = strings.ReplaceAll(param, " ", "")
			if param == "q=0" || param == "q=0.0" || param == "q=0.00" || param == "q=0.000" {
				return false
			}
		}
		return true
	}
	return false
}
