package render

import (
	"bytes"
	"html"
	"html/template"
	"net/http"
	"regexp"
	"strings"

	"qrportal/internal/model"
	"qrportal/internal/policy"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	defaultFontPx   = 28
	minFontPx       = 10
	maxFontPx       = 120
)

var (
	youtubePattern = regexp.MustCompile(`(?i)youtu\.be/([A-Za-z0-9_\-]+)|youtube\.com/watch\?v=([A-Za-z0-9_\-]+)`)
	vimeoPattern   = regexp.MustCompile(`(?i)vimeo\.com/(\d+)`)
)

// Options 渲染配置
type Options struct {
	BaseURL    string
	PrettyURLs bool
}

// Response 与框架无关的响应描述，由路由层写出
type Response struct {
	Status      int
	Location    string
	ContentType string
	Body        string
}

// variant 每种内容类型一个渲染函数
type variant func(r *Renderer, q *model.QRCode, target string) Response

var variants = map[model.ContentType]variant{
	model.ContentLink:  renderLink,
	model.ContentText:  landing(textBody),
	model.ContentImage: landing(imageBody),
	model.ContentVideo: landing(videoBody),
}

// Renderer 根据判定结果生成跳转或落地页
type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render 非放行结果返回对应状态码与简短提示，不会记录扫码
func (r *Renderer) Render(v policy.Verdict, q *model.QRCode) Response {
	if !v.Allowed() {
		return Message(v.Kind.HTTPStatus(), v.Kind.Message())
	}
	fn, ok := variants[q.Kind()]
	if !ok {
		return r.page(q, template.HTML("<p>No content.</p>"))
	}
	return fn(r, q, v.Target)
}

// Message 只含标题的简短页面
func Message(status int, msg string) Response {
	return Response{Status: status, ContentType: htmlContentType, Body: "<h1>" + html.EscapeString(msg) + "</h1>"}
}

func NotFound() Response {
	return Message(http.StatusNotFound, "QR Not Found")
}

func Forbidden() Response {
	return Message(http.StatusForbidden, "Forbidden")
}

func ServerError() Response {
	return Message(http.StatusInternalServerError, "Internal Server Error")
}

func renderLink(_ *Renderer, _ *model.QRCode, target string) Response {
	location := NormalizeURL(target)
	if location == "" {
		return Response{
			Status:      http.StatusOK,
			ContentType: htmlContentType,
			Body:        "<h1>Dynamic QR</h1><p>No target configured.</p>",
		}
	}
	return Response{Status: http.StatusFound, Location: location}
}

func landing(body func(payload string) template.HTML) variant {
	return func(r *Renderer, q *model.QRCode, _ string) Response {
		return r.page(q, body(q.Payload))
	}
}

var (
	textTmpl    = template.Must(template.New("text").Parse(`<pre>{{.}}</pre>`))
	imageTmpl   = template.Must(template.New("image").Parse(`<div style="text-align:center"><img src="{{.}}" style="max-width:100%"></div>`))
	youtubeTmpl = template.Must(template.New("youtube").Parse(`<iframe width="560" height="315" src="https://www.youtube.com/embed/{{.}}" frameborder="0" allowfullscreen></iframe>`))
	vimeoTmpl   = template.Must(template.New("vimeo").Parse(`<iframe src="https://player.vimeo.com/video/{{.}}" width="640" height="360" frameborder="0" allowfullscreen></iframe>`))
	videoTmpl   = template.Must(template.New("video").Parse(`<video controls style="max-width:100%"><source src="{{.}}" type="video/mp4"></video>`))
	pageTmpl    = template.Must(template.New("page").Parse(`<!doctype html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>{{.Title}}</title></head><body>` +
		`<div class="card">{{with .Top}}<div style="text-align:center; font-weight:600; line-height:1.2; margin:10px 0; font-size:{{$.FontPx}}px;">{{.}}</div>{{end}}` +
		`<h2>{{.Title}}</h2>{{.Body}}` +
		`{{with .Bottom}}<div style="text-align:center; font-weight:600; line-height:1.2; margin:10px 0; font-size:{{$.FontPx}}px;">{{.}}</div>{{end}}</div>` +
		`{{with .ShortLink}}<p style="text-align:center"><a href="{{.}}">{{.}}</a></p>{{end}}</body></html>`))
)

func exec(t *template.Template, data interface{}) template.HTML {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return template.HTML("<p>No content.</p>")
	}
	return template.HTML(buf.String())
}

func textBody(payload string) template.HTML {
	return exec(textTmpl, payload)
}

func imageBody(payload string) template.HTML {
	return exec(imageTmpl, NormalizeURL(payload))
}

// YouTubeID 从 youtu.be/<id> 或 youtube.com/watch?v=<id> 中提取视频ID
func YouTubeID(raw string) (string, bool) {
	m := youtubePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}

// VimeoID 从 vimeo.com/<数字> 中提取视频ID
func VimeoID(raw string) (string, bool) {
	m := vimeoPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func videoBody(payload string) template.HTML {
	v := strings.TrimSpace(payload)
	if id, ok := YouTubeID(v); ok {
		return exec(youtubeTmpl, id)
	}
	if id, ok := VimeoID(v); ok {
		return exec(vimeoTmpl, id)
	}
	return exec(videoTmpl, NormalizeURL(v))
}

type pageData struct {
	Title     string
	Top       string
	Bottom    string
	FontPx    int
	Body      template.HTML
	ShortLink string
}

func fontPx(px int) int {
	if px <= 0 {
		px = defaultFontPx
	}
	if px < minFontPx {
		return minFontPx
	}
	if px > maxFontPx {
		return maxFontPx
	}
	return px
}

func (r *Renderer) page(q *model.QRCode, body template.HTML) Response {
	title := q.Name
	if title == "" {
		title = "Dynamic QR"
	}
	data := pageData{
		Title:     title,
		Top:       strings.TrimSpace(q.TitleTop),
		Bottom:    strings.TrimSpace(q.TitleBottom),
		FontPx:    fontPx(q.TitleFontPx),
		Body:      body,
		ShortLink: r.ShortLink(q.Alias),
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return ServerError()
	}
	return Response{Status: http.StatusOK, ContentType: htmlContentType, Body: buf.String()}
}
