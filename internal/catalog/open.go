package catalog

import (
	"fmt"
	"io/fs"

	"coursepage/internal/config"
	"coursepage/internal/logger"
)

// EmbeddedBase 嵌入式FS中课程的根路径
const EmbeddedBase = "courses"

// Open 按配置创建课程来源
// staticFiles 仅在启用嵌入模式时使用；db 仅在 postgres 来源下使用，连接由调用方负责建立
func Open(cfg config.CatalogConfig, staticFiles fs.FS, db Querier, loggerInstance *logger.Logger) (Source, error) {
	if loggerInstance == nil {
		loggerInstance = logger.NewLogger(logger.INFO)
	}

	switch cfg.Source {
	case config.SourceFS, "":
		var src *FSSource
		if cfg.UseEmbed {
			if staticFiles == nil {
				return nil, fmt.Errorf("embedded courses are not available")
			}
			loggerInstance.Info("Using embedded courses")
			src = NewFSSource(staticFiles, EmbeddedBase)
		} else {
			loggerInstance.Info("Using courses directory: %s", cfg.Dir)
			src = NewDirSource(cfg.Dir)
		}
		src.SetLogger(loggerInstance)
		return src, nil
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres catalog source requires a database connection")
		}
		loggerInstance.Info("Using postgres course catalog")
		src := NewPostgresSource(db)
		src.SetLogger(loggerInstance)
		return src, nil
	default:
		return nil, fmt.Errorf("unknown catalog source: %s", cfg.Source)
	}
}
