package qrimage

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// Writer 将短链接编码为 PNG 保存到资源目录
type Writer struct {
	dir  string
	size int
}

func NewWriter(dir string, size int) *Writer {
	return &Writer{dir: dir, size: size}
}

// Write 生成 qr-<id>.png 并返回文件路径
func (w *Writer) Write(id uint, content string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("创建二维码目录失败: %w", err)
	}
	path := filepath.Join(w.dir, fmt.Sprintf("qr-%d.png", id))
	if err := qrcode.WriteFile(content, qrcode.Medium, w.size, path); err != nil {
		return "", fmt.Errorf("生成二维码图片失败: %w", err)
	}
	return path, nil
}
