package main

import (
	"embed"
	"os"

	checkcmd "coursepage/cmd/check"
	servercmd "coursepage/cmd/server"

	"github.com/spf13/cobra"
)

// staticFiles 嵌入课程目录，发布模式（COURSES_USE_EMBED）下从这里读取课程
//
//go:embed courses/*
var staticFiles embed.FS

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "coursepage",
		Short:        "课程详情页服务",
		SilenceUsage: true,
	}
	root.AddCommand(servercmd.NewCommand(staticFiles))
	root.AddCommand(checkcmd.NewCommand(staticFiles))
	return root
}

// main 是应用程序的入口函数
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
