package constants

import "time"

const (
	CHANNEL_SIZE  = 100      // websocket/中继通道缓冲大小
	FILE_MAX_SIZE = 50 << 20 // 上传文件最大大小（50MB，对应前端 base64 限制）

	MESSAGE_PAGE_LIMIT = 100 // 单次拉取聊天记录的最大条数

	REDIS_TIMEOUT = 1 * time.Minute // 缓存过期时间

	// 客户端同步引擎相关
	MAX_CACHED_PER_CHAT  = 500              // 单个会话消息缓存上限，超出后淘汰最旧的
	NOTIFY_PREVIEW_RUNES = 50               // 通知正文截断长度
	CALL_RING_TIMEOUT    = 30 * time.Second // 呼叫无人接听的超时时间
)
