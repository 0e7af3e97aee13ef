package relay

import (
	"context"

	"stogram_server/pkg/constants"

	"go.uber.org/zap"
)

// channelBroker 进程内通道中继
// 单机部署的默认实现，发布和消费在同一进程内完成
type channelBroker struct {
	transmit chan []byte
	done     chan struct{}
}

func newChannelBroker() *channelBroker {
	return &channelBroker{
		transmit: make(chan []byte, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

// Publish 把载荷放入转发通道
// 通道满时丢弃并记录日志，发送路径不能被慢消费者阻塞
func (b *channelBroker) Publish(ctx context.Context, key, value []byte) error {
	select {
	case b.transmit <- value:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return nil
	default:
		zap.L().Warn("relay transmit channel full, event dropped")
		return nil
	}
}

// Consume 阻塞消费转发通道
func (b *channelBroker) Consume(ctx context.Context, handler func(value []byte)) {
	for {
		select {
		case value, ok := <-b.transmit:
			if !ok {
				return
			}
			handler(value)
		case <-ctx.Done():
			return
		case <-b.done:
			return
		}
	}
}

func (b *channelBroker) Close() error {
	close(b.done)
	return nil
}
