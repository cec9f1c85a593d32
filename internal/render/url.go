package render

import (
	"net/url"
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`(?i)^[a-z][a-z0-9+\-.]*://`)

// NormalizeURL 去除首尾空白；已带协议的原样保留，"//" 开头补 https:，其余补 https://，空串保持为空
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return ""
	case schemePattern.MatchString(s):
		return s
	case strings.HasPrefix(s, "//"):
		return "https:" + s
	default:
		return "https://" + s
	}
}

// ShortLink 生成二维码对外的短链接
func (r *Renderer) ShortLink(alias string) string {
	if alias == "" {
		return ""
	}
	base := strings.TrimRight(r.opts.BaseURL, "/")
	if r.opts.PrettyURLs {
		return base + "/r/" + url.PathEscape(alias)
	}
	return base + "/?rwqr_alias=" + url.QueryEscape(alias)
}
