package coursepage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sync"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Renderer 将展示数据渲染为 HTML
// 模板在首次使用时解析一次，之后可并发使用
type Renderer struct {
	files     fs.FS
	once      sync.Once
	templates *template.Template
	err       error
}

// NewRenderer 创建使用内置模板的渲染器
func NewRenderer() *Renderer {
	return NewRendererFS(templateFiles)
}

// NewRendererFS 从 files 的 templates/*.html 读取模板，需定义 page 与 course
func NewRendererFS(files fs.FS) *Renderer {
	return &Renderer{files: files}
}

func (r *Renderer) parse() (*template.Template, error) {
	r.once.Do(func() {
		funcs := template.FuncMap{
			// 课程描述本身是 HTML，按原样输出
			"rawHTML": func(s string) template.HTML { return template.HTML(s) },
		}
		r.templates, r.err = template.New("coursepage").Funcs(funcs).ParseFS(r.files, "templates/*.html")
		if r.err != nil {
			r.err = fmt.Errorf("parse course page templates: %w", r.err)
		}
	})
	return r.templates, r.err
}

// RenderPage 渲染完整页面
func (r *Renderer) RenderPage(w io.Writer, vm ViewModel) error {
	t, err := r.parse()
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, "page", vm)
}

// RenderFragment 仅渲染课程内容部分，用于实时会话推送
func (r *Renderer) RenderFragment(vm ViewModel) (string, error) {
	t, err := r.parse()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "course", vm); err != nil {
		return "", err
	}
	return buf.String(), nil
}
