package service

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/catalog-next/internal/config"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	docxType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pptxType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// extensionTypes lists the sniffed types each known extension may carry.
// Office formats are zip containers and sniff as plain zip when the
// manifest sits past the detection window.
var extensionTypes = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".webp": {"image/webp"},
	".svg":  {"image/svg+xml"},
	".pdf":  {"application/pdf"},
	".txt":  {"text/plain"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".xls":  {"application/vnd.ms-excel", "application/x-ole-storage"},
	".ppt":  {"application/vnd.ms-powerpoint", "application/x-ole-storage"},
	".docx": {docxType, "application/zip"},
	".xlsx": {xlsxType, "application/zip"},
	".pptx": {pptxType, "application/zip"},
	".zip":  {"application/zip"},
	".rar":  {"application/x-rar-compressed"},
	".7z":   {"application/x-7z-compressed"},
}

// UploadedFile describes a stored upload.
type UploadedFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mimetype,omitempty"`
	Created  time.Time `json:"created"`
	URL      string    `json:"url"`
}

// UploadService stores user files on local disk, one directory per user.
type UploadService struct {
	cfg config.UploadConfig
}

// NewUploadService creates the service.
func NewUploadService(cfg config.UploadConfig) *UploadService {
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = "uploads"
	}
	return &UploadService{cfg: cfg}
}

// MaxSize is the per-file limit in bytes.
func (s *UploadService) MaxSize() int64 {
	return s.cfg.MaxSize
}

// SaveFile validates and stores file under userID. The stored name is a
// fresh uuid with the original extension.
func (s *UploadService) SaveFile(userID uint, file *multipart.FileHeader) (*UploadedFile, error) {
	if file == nil {
		return nil, ErrUploadMissing
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w (max %d MB)", ErrUploadTooLarge, s.cfg.MaxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" || !containsFold(s.cfg.AllowedExtensions, ext) {
		return nil, fmt.Errorf("%w: extension %q", ErrUploadTypeNotAllowed, ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, err
	}
	contentType := baseMediaType(detected.String())
	if !containsFold(s.cfg.AllowedTypes, contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUploadTypeNotAllowed, contentType)
	}
	if expected, ok := extensionTypes[ext]; ok && !containsFold(expected, contentType) {
		return nil, fmt.Errorf("%w: %s content in a %s file", ErrUploadTypeNotAllowed, contentType, ext)
	}

	if isRasterImage(contentType) {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if err := s.checkDimensions(src); err != nil {
			return nil, err
		}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &UploadedFile{
		Name:     name,
		Size:     written,
		MimeType: contentType,
		Created:  time.Now(),
		URL:      uploadURL(name),
	}, nil
}

// List returns the caller's files, newest first.
func (s *UploadService) List(userID uint) ([]UploadedFile, error) {
	entries, err := os.ReadDir(s.userDir(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return []UploadedFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]UploadedFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, UploadedFile{
			Name:     entry.Name(),
			Size:     info.Size(),
			MimeType: mime.TypeByExtension(filepath.Ext(entry.Name())),
			Created:  info.ModTime(),
			URL:      uploadURL(entry.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Created.Equal(files[j].Created) {
			return files[i].Name < files[j].Name
		}
		return files[i].Created.After(files[j].Created)
	})
	return files, nil
}

// Open resolves one of the caller's files to its path on disk.
func (s *UploadService) Open(userID uint, name string) (string, error) {
	path, err := s.filePath(userID, name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return "", ErrUploadNotFound
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// Delete removes one of the caller's files.
func (s *UploadService) Delete(userID uint, name string) error {
	path, err := s.Open(userID, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrUploadNotFound
		}
		return err
	}
	return nil
}

func (s *UploadService) checkDimensions(r io.Reader) error {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return fmt.Errorf("%w: unreadable image", ErrUploadTypeNotAllowed)
	}
	if s.cfg.MaxWidth > 0 && cfg.Width > s.cfg.MaxWidth {
		return fmt.Errorf("%w (max width %d)", ErrUploadImageTooLarge, s.cfg.MaxWidth)
	}
	if s.cfg.MaxHeight > 0 && cfg.Height > s.cfg.MaxHeight {
		return fmt.Errorf("%w (max height %d)", ErrUploadImageTooLarge, s.cfg.MaxHeight)
	}
	return nil
}

func (s *UploadService) userDir(userID uint) string {
	return filepath.Join(s.cfg.Dir, strconv.FormatUint(uint64(userID), 10))
}

func (s *UploadService) filePath(userID uint, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", ErrUploadInvalidName
	}
	return filepath.Join(s.userDir(userID), name), nil
}

func uploadURL(name string) string {
	return "/upload/" + name
}

func baseMediaType(value string) string {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return mediaType
}

func isRasterImage(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}
