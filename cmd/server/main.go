package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "qrportal/docs"
	"qrportal/internal/config"
	"qrportal/internal/events"
	"qrportal/internal/handler"
	"qrportal/internal/middleware"
	"qrportal/internal/model"
	"qrportal/internal/qrimage"
	"qrportal/internal/render"
	"qrportal/internal/resolver"
	"qrportal/internal/scan"
	"qrportal/internal/shortcode"
	"qrportal/internal/stats"
	"qrportal/internal/store"
	"qrportal/pkg/database"
	auth "qrportal/pkg/jwt"
	"qrportal/pkg/logger"
	"qrportal/pkg/redis"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 版本信息，编译时通过 ldflags 设置
var Version = "v1.0.0"

// @title 动态二维码门户 API
// @version 1.0
// @description 动态二维码的创建、管理与扫码统计接口
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	cmd := &cli.Command{
		Name:    "qr-portal",
		Usage:   "动态二维码跳转服务",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "配置文件路径",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd.String("config"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("服务启动失败: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.InitLogger(&cfg.Log); err != nil {
		return fmt.Errorf("日志初始化失败: %w", err)
	}
	defer func() {
		_ = logger.Logger.Sync()
	}()
	sugaredLogger := zap.S()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	sugaredLogger.Infof("✅ 数据库连接成功 (%s)", cfg.Database.Driver)

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	sugaredLogger.Info("✅ 数据库迁移成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewClient(ctx, &cfg.Cache)
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败，将不使用缓存: %v", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	aliasCache := store.NewAliasCache(rdb, time.Duration(cfg.Cache.AliasTTL)*time.Hour, sugaredLogger)
	recordStore := store.New(db, aliasCache)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var publisher events.Publisher = events.NopPublisher{}
	counter := stats.NewCounter(rdb, sugaredLogger)
	if cfg.Events.Enabled {
		bus := events.NewBus(&cfg.Events, sugaredLogger)
		defer func() {
			if err := bus.Close(); err != nil {
				sugaredLogger.Errorf("关闭事件总线失败: %v", err)
			}
		}()
		if counter.Enabled() {
			if err := bus.Subscribe(ctx, "daily_stats", counter.HandleScan); err != nil {
				return fmt.Errorf("订阅扫码事件失败: %w", err)
			}
		}
		publisher = bus
		sugaredLogger.Info("✅ 扫码事件总线已启动")
	}

	shortcodeGenerator := shortcode.NewGenerator(recordStore.AliasExists, sugaredLogger)
	shortcodeGenerator.Start()
	defer shortcodeGenerator.Stop()
	sugaredLogger.Info("✅ 别名生成器已启动")

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)

	if err := createAdminUser(db, cfg.Auth.AdminPassword); err != nil {
		sugaredLogger.Errorf("创建管理员失败: %v", err)
	}

	renderer := render.New(render.Options{BaseURL: cfg.Portal.BaseURL, PrettyURLs: cfg.Portal.PrettyURLs})
	handlers := handler.Handlers{
		Portal: handler.NewPortalHandler(
			resolver.New(recordStore, sugaredLogger),
			recordStore,
			scan.NewRecorder(recordStore, publisher, sugaredLogger),
			renderer,
			sugaredLogger,
		),
		QRCode: handler.NewQRCodeHandler(
			recordStore,
			shortcodeGenerator,
			qrimage.NewWriter(cfg.Portal.AssetDir, cfg.Portal.QRSize),
			renderer,
			counter,
			sugaredLogger,
		),
		Admin: handler.NewAdminHandler(db, recordStore, sugaredLogger),
		Auth:  handler.NewAuthHandler(db, rdb, tokenManager),
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := handler.NewEngine(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.RequestID())
	router.Use(middleware.GinZapLogger(logger.Logger))
	router.Use(middleware.RateLimit(rdb, &cfg.RateLimit))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	handler.RegisterRoutes(router, handlers, tokenManager)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 %s", cfg.Portal.BaseURL)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务运行失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sugaredLogger.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务关闭失败: %w", err)
	}
	return nil
}

// createAdminUser 首次启动时创建管理员账号
func createAdminUser(db *gorm.DB, password string) error {
	var existing model.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err == nil {
		return nil
	}

	if password == "" {
		password = "admin"
		zap.S().Warn("未配置 auth.admin_password，使用默认密码，请尽快修改")
	}

	admin := model.User{Username: "admin", Email: "admin@qrportal.local", Role: model.RoleAdmin, IsActive: true}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	zap.S().Infow("✅ 默认管理员创建成功", "username", admin.Username)
	return nil
}
