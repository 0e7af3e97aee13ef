package request

// InitiateCallRequest 发起通话请求
// 使用位置:
//   - handler/call_handler.go: InitiateCall
type InitiateCallRequest struct {
	// CallerId 主叫 uuid
	CallerId string `json:"callerId" binding:"required"`
	// ReceiverId 被叫 uuid
	ReceiverId string `json:"receiverId" binding:"required"`
	// Type 通话类型，0.语音，1.视频
	Type int8 `json:"type" binding:"gte=0,lte=1"`
}
