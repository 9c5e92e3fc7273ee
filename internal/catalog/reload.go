package catalog

import (
	"context"
	"fmt"
	"time"

	"coursepage/internal/logger"
)

// Reloader 将来源中的课程同步到目录
// 首次 Refresh 无条件加载；之后仅当来源摘要变化时才重新加载并替换目录
type Reloader struct {
	source   Source
	catalog  *Catalog
	interval time.Duration
	logger   *logger.Logger

	lastFingerprint string
}

// NewReloader 创建重载器，interval 为轮询间隔
func NewReloader(source Source, catalog *Catalog, interval time.Duration, loggerInstance *logger.Logger) *Reloader {
	if loggerInstance == nil {
		loggerInstance = logger.NewLogger(logger.INFO)
	}
	return &Reloader{
		source:   source,
		catalog:  catalog,
		interval: interval,
		logger:   loggerInstance,
	}
}

// Refresh 检查来源摘要，发生变化（或从未加载）时重新加载
// 返回目录是否被替换
func (r *Reloader) Refresh(ctx context.Context) (bool, error) {
	fp, err := r.source.Fingerprint(ctx)
	if err != nil {
		return false, err
	}
	if r.catalog.Loaded() && fp == r.lastFingerprint {
		return false, nil
	}

	courses, err := r.source.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reload catalog: %w", err)
	}
	for _, p := range Validate(courses) {
		r.logger.Warn("Catalog problem: %s", p)
	}

	r.catalog.Replace(courses)
	r.lastFingerprint = fp
	r.logger.Info("Catalog refreshed: %d courses (version %d)", len(courses), r.catalog.Version())
	return true, nil
}

// Run 按间隔轮询来源直到 ctx 结束
// 单次失败只记录警告，保留上一次成功加载的目录
func (r *Reloader) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("Catalog reload failed: %v", err)
			}
		}
	}
}
