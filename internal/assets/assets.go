// Package assets 提供页面图标及按符号名解析图标地址
package assets

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed icons/*.svg
var iconFiles embed.FS

// URLPrefix 图标对外的访问路径前缀
const URLPrefix = "/assets/icons/"

// 页面使用的图标符号名
const (
	Star          = "star"
	StarBlank     = "star_blank"
	PlayIcon      = "play_icon"
	DownArrowIcon = "down_arrow_icon"
)

// Icons 返回图标文件系统，根目录下直接是 *.svg
func Icons() fs.FS {
	sub, err := fs.Sub(iconFiles, "icons")
	if err != nil {
		// icons 目录由 go:embed 保证存在
		panic(err)
	}
	return sub
}

// URL 返回符号名对应的图标地址，未知名称返回空字符串
func URL(name string) string {
	if !Exists(name) {
		return ""
	}
	return URLPrefix + name + ".svg"
}

// Exists 判断符号名是否有对应图标
func Exists(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return false
	}
	_, err := fs.Stat(iconFiles, path.Join("icons", name+".svg"))
	return err == nil
}
