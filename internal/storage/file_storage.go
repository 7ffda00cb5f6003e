package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
)

// PublicPrefix — URL, по которому раздаются загруженные файлы.
const PublicPrefix = "/uploads/"

// filetype читает не больше 262 байт заголовка
const sniffLen = 262

// Разрешённые типы файлов для загрузки
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

var (
	ErrUnsupportedType = apperror.New(apperror.ErrCodeValidation, "Chỉ chấp nhận file ảnh (jpeg, png, gif, webp) hoặc PDF")
	ErrEmptyFile       = apperror.New(apperror.ErrCodeValidation, "File không được để trống")
)

// StoredFile описывает сохранённый файл в ответе API.
type StoredFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// FileStorage отвечает за файловое хранилище загрузок.
type FileStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewFileStorage создаёт файловое хранилище.
func NewFileStorage(rootPath string, maxUploadMB int64) (*FileStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &FileStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Root возвращает каталог хранилища (для раздачи статики).
func (s *FileStorage) Root() string {
	return s.rootPath
}

// MaxUploadBytes — лимит размера одного файла.
func (s *FileStorage) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Save проверяет тип файла по сигнатуре и сохраняет его под случайным именем.
// Расширение берётся из реального типа, а не из имени клиента.
func (s *FileStorage) Save(ctx context.Context, originalName string, r io.Reader) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmptyFile
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == types.Unknown || !allowedTypes[kind.MIME.Value] {
		return nil, ErrUnsupportedType
	}

	fileName := uuid.NewString() + "." + kind.Extension
	targetPath := filepath.Join(s.rootPath, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, s.tooLarge()
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return &StoredFile{
		Filename:     fileName,
		OriginalName: sanitizeFilename(originalName),
		Size:         written,
		URL:          PublicPrefix + fileName,
	}, nil
}

func (s *FileStorage) tooLarge() *apperror.AppError {
	return apperror.New(apperror.ErrCodeValidation,
		fmt.Sprintf("File vượt quá dung lượng cho phép (%dMB)", s.maxUploadBytes/(1024*1024)))
}

// Delete удаляет файл из хранилища.
func (s *FileStorage) Delete(ctx context.Context, fileName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, filepath.Base(fileName))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "file"
	}
	return name
}
