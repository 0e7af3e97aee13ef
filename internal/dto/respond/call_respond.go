package respond

// CallRespond 通话记录响应
type CallRespond struct {
	Uuid       string `json:"id"`
	CallerId   string `json:"callerId"`
	ReceiverId string `json:"receiverId"`
	Type       int8   `json:"type"`
	Status     int8   `json:"status"`
	CreatedAt  string `json:"createdAt"`
	EndedAt    string `json:"endedAt,omitempty"`
}
