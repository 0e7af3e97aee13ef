// Package http_server 提供 HTTP 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件、静态资源和路由
package http_server

import (
	"stogram_server/internal/config"
	"stogram_server/internal/handler"
	"stogram_server/internal/infrastructure/logger"
	"stogram_server/internal/infrastructure/middleware"
	"stogram_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 初始化 HTTP 服务器并返回 Gin 引擎实例
// handlers: 通过依赖注入传入的 handler 聚合对象
// 配置顺序：
//  1. 创建空白 Gin 引擎
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则
//  4. 映射静态资源目录
//  5. 注册业务路由
func Init(handlers *handler.Handlers) *gin.Engine {
	conf := config.GetConfig()

	// 不使用 gin.Default() 以便完全控制中间件
	engine := gin.New()

	// Zap 日志中间件替代 Gin 默认日志，true 表示记录 panic 堆栈
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	// CORS 只放行前端地址
	corsConfig := cors.DefaultConfig()
	if conf.MainConfig.FrontendURL != "" {
		corsConfig.AllowOrigins = []string{conf.MainConfig.FrontendURL}
	} else {
		corsConfig.AllowOrigins = []string{"*"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// TLS 重定向中间件（由 Nginx 终结 SSL 时关闭）
	if conf.MainConfig.EnableTLS {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	// 静态资源目录
	engine.Static("/static/avatars", conf.StaticSrcConfig.StaticAvatarPath)
	engine.Static("/static/files", conf.StaticSrcConfig.StaticFilePath)

	// 注册所有业务路由
	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
