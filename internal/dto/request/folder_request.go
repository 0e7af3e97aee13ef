package request

// CreateFolderRequest 创建聊天文件夹请求
// 使用位置:
//   - handler/folder_handler.go: CreateFolder
type CreateFolderRequest struct {
	UserId  string   `json:"userId" binding:"required"`
	Name    string   `json:"name" binding:"required,max=50"`
	ChatIds []string `json:"chatIds"`
}

// UpdateFolderRequest 更新聊天文件夹请求
// 使用位置:
//   - handler/folder_handler.go: UpdateFolder
type UpdateFolderRequest struct {
	Name    string   `json:"name" binding:"omitempty,max=50"`
	ChatIds []string `json:"chatIds"`
}

// FolderChatRequest 文件夹增删会话请求
// 使用位置:
//   - handler/folder_handler.go: AddChatToFolder, RemoveChatFromFolder
type FolderChatRequest struct {
	ChatId string `json:"chatId" binding:"required"`
}
