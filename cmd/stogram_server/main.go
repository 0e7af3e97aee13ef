package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stogram_server/internal/config"
	dao "stogram_server/internal/dao/mysql"
	myredis "stogram_server/internal/dao/redis"
	"stogram_server/internal/feed"
	"stogram_server/internal/gateway/websocket"
	"stogram_server/internal/handler"
	"stogram_server/internal/http_server"
	"stogram_server/internal/infrastructure/logger"
	"stogram_server/internal/relay"
	"stogram_server/internal/service"
	"stogram_server/internal/service/presence"
	"stogram_server/pkg/util/jwt"
	"stogram_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	cache := myredis.GetCacheService()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 与雪花 ID
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 6. 初始化 validator 翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("validator 翻译器初始化失败", zap.Error(err))
	}

	// 7. 初始化消息中继
	broker := relay.New(conf.RelayConfig)
	if conf.RelayConfig.MessageMode == "kafka" {
		if err := relay.EnsureTopic(conf.RelayConfig); err != nil {
			zap.L().Warn("Kafka 主题创建失败", zap.Error(err))
		}
	}
	zap.L().Info("消息中继初始化成功", zap.String("mode", conf.RelayConfig.MessageMode))

	// 8. 初始化事件总线与 Service 层（依赖注入）
	bus := feed.NewBus()
	services := service.NewServices(repos, cache, broker, bus)

	// 9. 初始化 WebSocket 网关
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.NewHub(bus, broker, presence.NewStore(repos, cache))
	go hub.Run(ctx)
	zap.L().Info("WebSocket 网关初始化成功")

	// 10. 初始化 HTTP 服务器
	handlers := handler.NewHandlers(services, hub)
	engine := http_server.Init(handlers)

	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("HTTP 服务器启动",
		zap.String("host", conf.MainConfig.Host), zap.Int("port", conf.MainConfig.Port))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	cancel()
	if err := broker.Close(); err != nil {
		zap.L().Warn("中继关闭失败", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
