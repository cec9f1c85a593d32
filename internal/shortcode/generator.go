package shortcode

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Charset 包含用于生成别名的所有字符
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength 是生成的别名长度
	CodeLength = 7
	// ChannelBufferSize 是别名通道的缓冲区大小
	ChannelBufferSize = 200
	// MinFillThreshold 是触发补充的最小阈值
	MinFillThreshold = 20
)

// ExistsFunc 判断别名是否已被占用（包括已删除的记录）
type ExistsFunc func(ctx context.Context, alias string) (bool, error)

// Generator 预生成唯一别名，创建二维码时直接取用
type Generator struct {
	exists    ExistsFunc
	codeChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	logger    *zap.SugaredLogger
}

// NewGenerator 创建一个新的别名生成器实例
func NewGenerator(exists ExistsFunc, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		exists:   exists,
		codeChan: make(chan string, ChannelBufferSize),
		stopChan: make(chan struct{}),
		logger:   logger.Named("shortcode_generator"),
	}
}

// Start 启动后台生成和补充任务
func (g *Generator) Start() {
	g.logger.Info("启动别名生成器...")
	go g.fillChannel()
	go g.monitorAndRefill()
}

// Stop 停止生成器，可重复调用
func (g *Generator) Stop() {
	g.stopOnce.Do(func() {
		g.logger.Info("正在停止别名生成器...")
		close(g.stopChan)
	})
}

// GetCode 优先从通道取预生成的别名，通道为空时同步生成
func (g *Generator) GetCode(ctx context.Context) (string, error) {
	select {
	case code := <-g.codeChan:
		return code, nil
	default:
	}
	for {
		code, err := g.generateUniqueCode(ctx)
		if err != nil {
			return "", err
		}
		if code != "" {
			return code, nil
		}
	}
}

// monitorAndRefill 监视通道的填充水平并根据需要进行补充
func (g *Generator) monitorAndRefill() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(g.codeChan) < MinFillThreshold {
				g.fillChannel()
			}
		case <-g.stopChan:
			g.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

// fillChannel 生成别名并填充通道
func (g *Generator) fillChannel() {
	g.mu.Lock()
	if g.isFilling {
		g.mu.Unlock()
		return
	}
	g.isFilling = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isFilling = false
		g.mu.Unlock()
	}()

	for len(g.codeChan) < ChannelBufferSize {
		select {
		case <-g.stopChan:
			g.logger.Info("填充任务已中断。")
			return
		default:
			code, err := g.generateUniqueCode(context.Background())
			if err != nil {
				g.logger.Errorf("生成唯一别名时出错: %v", err)
				select {
				case <-g.stopChan:
					return
				case <-time.After(100 * time.Millisecond):
				}
				continue
			}
			if code == "" {
				continue
			}
			select {
			case g.codeChan <- code:
			default:
				return
			}
		}
	}
	g.logger.Debugf("别名通道已填满，现有 %d 个。", len(g.codeChan))
}

// generateUniqueCode 返回空字符串表示多次冲突需要重试
func (g *Generator) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		code, err := generateRandomString(CodeLength)
		if err != nil {
			return "", err
		}
		exists, err := g.exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	g.logger.Warn("已尝试10次生成别名，但均存在冲突。")
	return "", nil
}

// generateRandomString 使用加密安全的随机数生成器生成一个给定长度的字符串
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(Charset))))
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}
