package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coursepage/internal/assets"
	"coursepage/internal/catalog"
	"coursepage/internal/check"
	"coursepage/internal/config"
	"coursepage/internal/coursepage"
	"coursepage/internal/logger"
	"coursepage/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler API处理器
// 封装所有HTTP请求处理逻辑：课程JSON接口、课程详情页、实时会话与静态图标
type Handler struct {
	// catalog 课程目录，由重载器在后台替换
	catalog *catalog.Catalog
	// renderer 课程详情页模板渲染器
	renderer *coursepage.Renderer
	// sessions 实时课程页会话管理器
	sessions *session.Manager
	// logger 日志记录器实例，用于统一日志管理
	logger *logger.Logger

	// cfg 全局配置，用于环境检查与页面选项
	cfg  *config.Config
	opts coursepage.Options
}

// NewHandler 创建新的API处理器
// 参数:
//
//	cat: 课程目录
//	sessions: 实时会话管理器，为 nil 时按相同目录与配置创建
//	logger: 日志记录器实例（从main函数传入，确保使用统一配置）
//	cfg: 全局配置
//
// 返回: 初始化的API处理器
func NewHandler(cat *catalog.Catalog, sessions *session.Manager, loggerInstance *logger.Logger, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	if loggerInstance == nil {
		loggerInstance = logger.NewLogger(logger.INFO)
	}
	opts := coursepage.Options{
		DescriptionLimit: cfg.Page.DescriptionLimit,
		Educator:         cfg.Page.Educator,
	}
	renderer := coursepage.NewRenderer()
	if sessions == nil {
		sessions = session.NewManager(cat, renderer, opts)
		sessions.SetLogger(loggerInstance)
	}
	return &Handler{
		catalog:  cat,
		renderer: renderer,
		sessions: sessions,
		logger:   loggerInstance,
		cfg:      cfg,
		opts:     opts,
	}
}

// Sessions 返回实时会话管理器
func (h *Handler) Sessions() *session.Manager {
	return h.sessions
}

// SetupRoutes 设置路由
// 配置健康检查、课程JSON接口、课程详情页、WebSocket会话与图标资源
// 参数:
//
//	r: Gin引擎实例
func (h *Handler) SetupRoutes(r *gin.Engine) {
	// 健康检查路由（根级别）
	r.GET("/health", h.healthCheck)

	api := r.Group("/api")
	{
		// 环境检测
		api.GET("/check", h.envCheck)

		// 课程相关路由
		courses := api.Group("/courses")
		{
			courses.GET("", h.getCourses)
			courses.GET("/:id", h.getCourse)
			courses.GET("/:id/view", h.getCourseView)
		}
	}

	// 课程详情页
	r.GET("/course/:id", h.coursePage)

	// WebSocket路由
	r.GET("/ws/course/:id", h.handleCourseWebSocket)

	// 图标资源
	r.StaticFS(strings.TrimSuffix(assets.URLPrefix, "/"), http.FS(assets.Icons()))
}

// healthCheck 健康检查
// 响应: {"status": "ok", "message": "Course Details service is running"}
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Course Details service is running",
	})
}

// envCheck 环境检测，与 cmd/check 保持一致的检查逻辑但以 JSON 返回
func (h *Handler) envCheck(c *gin.Context) {
	h.logger.Info("Handling /api/check request")

	items := make([]check.Item, 0, 2)

	// 课程完整性（使用已加载的目录）
	coursesOK, coursesMsg := check.CatalogIntegrity(h.catalog.Courses())
	items = append(items, check.Item{Name: "课程加载与完整性", OK: coursesOK, Message: coursesMsg})

	// 服务健康
	serviceOK, serviceMsg := check.ServiceHealth(h.cfg.Server.Host, h.cfg.Server.Port)
	items = append(items, check.Item{Name: fmt.Sprintf("服务健康检查 (%s:%d)", h.cfg.Server.Host, h.cfg.Server.Port), OK: serviceOK, Message: serviceMsg})

	c.JSON(http.StatusOK, check.NewSummary(items))
}

// courseSummary 课程列表中的单项
type courseSummary struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Educator     string  `json:"educator"`
	Thumbnail    string  `json:"thumbnail,omitempty"`
	Rating       float64 `json:"rating"`
	RatingCount  int     `json:"ratingCount"`
	StudentCount int     `json:"studentCount"`
	LectureCount int     `json:"lectureCount"`
	Duration     string  `json:"duration"`
}

func (h *Handler) summarize(course *catalog.Course) courseSummary {
	educator := course.Educator
	if educator == "" {
		educator = h.opts.Educator
	}
	return courseSummary{
		ID:           course.ID,
		Title:        course.Title,
		Educator:     educator,
		Thumbnail:    course.Thumbnail,
		Rating:       catalog.CalculateRating(course),
		RatingCount:  len(course.Ratings),
		StudentCount: len(course.EnrolledStudents),
		LectureCount: catalog.CalculateNoOfLecture(course),
		Duration:     catalog.CalculateCourseDuration(course),
	}
}

// getCourses 获取所有课程
// 按目录顺序返回课程摘要
// 响应: {"courses": [summary, ...], "loaded": bool}
func (h *Handler) getCourses(c *gin.Context) {
	courses := h.catalog.Courses()
	list := make([]courseSummary, 0, len(courses))
	for _, course := range courses {
		if course == nil {
			continue
		}
		list = append(list, h.summarize(course))
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": list,
		"loaded":  h.catalog.Loaded(),
	})
}

// lookupCourse 按ID查找课程，返回 catalog.ErrCourseNotFound 表示不存在
func (h *Handler) lookupCourse(id string) (*catalog.Course, error) {
	course, ok := h.catalog.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrCourseNotFound, id)
	}
	return course, nil
}

// getCourse 获取指定课程
// 根据课程ID获取课程原始数据及派生指标
// 路径参数:
//
//	id: 课程ID
//
// 响应:
//
//	200: {"course": courseObject, "summary": summary} - 课程详细信息
//	400: {"error": "课程ID不能为空"} - 课程ID为空
//	404: {"error": "课程不存在"} - 课程不存在
func (h *Handler) getCourse(c *gin.Context) {
	id := c.Param("id")

	// 验证课程ID不能为空
	if strings.TrimSpace(id) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "课程ID不能为空",
		})
		return
	}

	course, err := h.lookupCourse(id)
	if err != nil {
		if errors.Is(err, catalog.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "课程不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course":  course,
		"summary": h.summarize(course),
	})
}

// getCourseView 获取课程详情页展示数据
// 课程未解析时返回 loading=true 的占位数据而不是 404，与页面行为一致
// 查询参数:
//
//	open: 初始展开的章节，例如 0,2
func (h *Handler) getCourseView(c *gin.Context) {
	view := coursepage.NewView(h.catalog, c.Param("id"), h.opts, coursepage.ParseOpen(c.Query("open"))...)
	c.JSON(http.StatusOK, gin.H{
		"view": view.Model(),
	})
}

// coursePage 渲染课程详情页
// 每次请求挂载一个新的视图，展开状态来自 open 查询参数
func (h *Handler) coursePage(c *gin.Context) {
	view := coursepage.NewView(h.catalog, c.Param("id"), h.opts, coursepage.ParseOpen(c.Query("open"))...)

	// 先完整渲染到缓冲区，失败时不会留下半个 200 响应
	var buf bytes.Buffer
	if err := h.renderer.RenderPage(&buf, view.Model()); err != nil {
		h.logger.Error("渲染课程详情页失败: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "渲染课程详情页失败"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleCourseWebSocket 课程详情页实时会话
// 查询参数:
//
//	open: 初始展开的章节
//
// 响应:
//
//	101: WebSocket连接建立成功，随后推送 connected 与 render 消息
func (h *Handler) handleCourseWebSocket(c *gin.Context) {
	courseID := c.Param("id")
	open := coursepage.ParseOpen(c.Query("open"))

	upgrader := websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket升级失败: %v", err)
		return
	}

	h.logger.Info("课程页会话已连接，课程: %s", courseID)
	h.sessions.Serve(conn, courseID, open)
}

// checkOrigin WebSocket 握手不经过 CORS 处理，这里按相同的来源列表校验
// 没有 Origin 的非浏览器客户端与同源页面总是允许
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.cfg.Server.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	h.logger.Warn("拒绝来源 %s 的WebSocket连接", origin)
	return false
}
