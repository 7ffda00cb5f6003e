package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/binhminh-backend/internal/http/response"
	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/storage"
)

var errNoFile = apperror.New(apperror.ErrCodeValidation, "Không có file được upload")

// UploadHandler принимает файлы из админки и кладёт их в хранилище.
type UploadHandler struct {
	storage  *storage.FileStorage
	maxFiles int
}

// NewUploadHandler создаёт хэндлер загрузки.
func NewUploadHandler(fs *storage.FileStorage, maxFiles int) *UploadHandler {
	if maxFiles <= 0 {
		maxFiles = 10
	}
	return &UploadHandler{storage: fs, maxFiles: maxFiles}
}

// Single обрабатывает POST /api/upload/single (поле file).
func (h *UploadHandler) Single(c *gin.Context) {
	h.limitBody(c, 1)

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errNoFile)
		return
	}

	stored, err := h.save(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Upload file thành công", stored)
}

// Multiple обрабатывает POST /api/upload/multiple (поле files).
// Если хотя бы один файл не прошёл, уже сохранённые удаляются.
func (h *UploadHandler) Multiple(c *gin.Context) {
	h.limitBody(c, h.maxFiles)

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		response.Error(c, errNoFile)
		return
	}
	files := form.File["files"]
	if len(files) > h.maxFiles {
		response.Error(c, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("Tối đa %d file mỗi lần upload", h.maxFiles)))
		return
	}

	ctx := c.Request.Context()
	saved := make([]*storage.StoredFile, 0, len(files))
	for _, file := range files {
		stored, err := h.save(ctx, file)
		if err != nil {
			h.rollback(ctx, saved)
			response.Error(c, err)
			return
		}
		saved = append(saved, stored)
	}
	response.Success(c, "Upload files thành công", saved)
}

func (h *UploadHandler) save(ctx context.Context, file *multipart.FileHeader) (*storage.StoredFile, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("upload: open %s: %w", file.Filename, err)
	}
	defer src.Close()

	return h.storage.Save(ctx, file.Filename, src)
}

func (h *UploadHandler) rollback(ctx context.Context, saved []*storage.StoredFile) {
	for _, f := range saved {
		if err := h.storage.Delete(ctx, f.Filename); err != nil {
			logger.Log.WithFields(logrus.Fields{"file": f.Filename, "error": err}).Warn("не удалось удалить файл после ошибки загрузки")
		}
	}
}

// limitBody ограничивает тело запроса: files файлов плюс запас на заголовки формы.
func (h *UploadHandler) limitBody(c *gin.Context, files int) {
	limit := h.storage.MaxUploadBytes()*int64(files) + 1<<20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
}
