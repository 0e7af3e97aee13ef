// Package file 提供文件存储业务逻辑
// 上传内容为 base64 的 data URL，解码后写入静态目录并返回公网 URL；
// 任何一步失败都回退为原样返回 data URL，前端直接内嵌展示
package file

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"stogram_server/internal/config"
	"stogram_server/internal/dto/request"
	"stogram_server/internal/dto/respond"
	"stogram_server/pkg/constants"
	"stogram_server/pkg/errorx"
	"stogram_server/pkg/util/random"
)

// fileService 文件存储业务逻辑实现
type fileService struct{}

// NewFileService 构造函数
func NewFileService() *fileService {
	return &fileService{}
}

// decodeDataURL 解码 data URL 或裸 base64 内容
func decodeDataURL(raw string) ([]byte, error) {
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		idx := strings.Index(raw, ",")
		if idx < 0 {
			return nil, fmt.Errorf("data URL 缺少内容分隔符")
		}
		payload = raw[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// Upload 保存 base64 内容为静态文件
func (s *fileService) Upload(req request.UploadFileRequest) (*respond.UploadRespond, error) {
	fallback := &respond.UploadRespond{
		Url:      req.File,
		FileName: req.FileName,
		Fallback: true,
	}

	data, err := decodeDataURL(req.File)
	if err != nil {
		zap.L().Warn("上传内容解码失败，回退 data URL", zap.Error(err))
		return fallback, nil
	}
	if len(data) > constants.FILE_MAX_SIZE {
		return nil, errorx.New(errorx.CodeUploadFailed, "文件超过大小限制")
	}

	conf := config.GetConfig()
	dir := conf.StaticSrcConfig.StaticFilePath
	if err := os.MkdirAll(dir, 0o755); err != nil {
		zap.L().Warn("创建静态目录失败，回退 data URL", zap.Error(err))
		return fallback, nil
	}

	// 随机前缀避免同名覆盖
	saveName := random.GetNowAndLenRandomString(8) + "_" + filepath.Base(req.FileName)
	fullPath := filepath.Join(dir, saveName)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		zap.L().Warn("写入静态文件失败，回退 data URL", zap.Error(err))
		return fallback, nil
	}

	return &respond.UploadRespond{
		Url:      conf.MainConfig.PublicURL + "/static/files/" + saveName,
		FileName: req.FileName,
	}, nil
}
