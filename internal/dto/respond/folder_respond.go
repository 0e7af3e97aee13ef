package respond

// FolderRespond 聊天文件夹响应
type FolderRespond struct {
	Uuid    string   `json:"id"`
	UserId  string   `json:"userId"`
	Name    string   `json:"name"`
	ChatIds []string `json:"chatIds"`
}
