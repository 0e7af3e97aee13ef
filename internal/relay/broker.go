// Package relay 提供消息中继的抽象
// 消息服务落库后把事件发给 Broker，网关从 Broker 消费并推给在线连接。
// 单机部署用进程内通道（channel 模式），多实例部署经由 Kafka（kafka 模式），
// 两种模式对上层完全透明
package relay

import (
	"context"

	"stogram_server/internal/config"
)

// Broker 消息中继接口
type Broker interface {
	// Publish 发布一条事件载荷
	// key 用于 Kafka 分区路由，channel 模式忽略
	Publish(ctx context.Context, key, value []byte) error
	// Consume 阻塞消费事件，每条载荷交给 handler 处理
	// ctx 取消后返回
	Consume(ctx context.Context, handler func(value []byte))
	// Close 释放底层资源
	Close() error
}

// New 根据配置选择中继实现
// messageMode 为 "kafka" 时使用 Kafka，否则使用进程内通道
func New(conf config.RelayConfig) Broker {
	if conf.MessageMode == "kafka" {
		return newKafkaBroker(conf)
	}
	return newChannelBroker()
}
