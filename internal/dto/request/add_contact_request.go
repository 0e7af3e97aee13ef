package request

// AddContactRequest 添加联系人请求
// 使用位置:
//   - handler/contact_handler.go: AddContact
type AddContactRequest struct {
	UserId        string `json:"userId" binding:"required"`
	ContactUserId string `json:"contactUserId" binding:"required"`
}
