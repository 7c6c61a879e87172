package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/catalog-next/internal/config"
)

func newUploadTestService(t *testing.T) *UploadService {
	t.Helper()
	return NewUploadService(config.UploadConfig{
		Dir:               t.TempDir(),
		MaxSize:           4096,
		AllowedTypes:      []string{"image/png", "text/plain", "application/pdf"},
		AllowedExtensions: []string{".png", ".txt", ".pdf"},
		MaxWidth:          32,
		MaxHeight:         32,
	})
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}
	return buf.Bytes()
}

// multipartFile builds the header a parsed multipart form would hold.
func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse form failed: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestUploadSaveListOpenDelete(t *testing.T) {
	svc := newUploadTestService(t)

	saved, err := svc.SaveFile(7, multipartFile(t, "Logo.PNG", pngBytes(t, 8, 8)))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasSuffix(saved.Name, ".png") || saved.MimeType != "image/png" || saved.URL != "/upload/"+saved.Name {
		t.Fatalf("unexpected upload %+v", saved)
	}

	files, err := svc.List(7)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != saved.Name || files[0].Size != saved.Size {
		t.Fatalf("want the saved file listed got %+v", files)
	}
	others, err := svc.List(8)
	if err != nil || len(others) != 0 {
		t.Fatalf("want empty list for another user got %v %v", others, err)
	}

	if _, err := svc.Open(8, saved.Name); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("want ErrUploadNotFound for another user got %v", err)
	}
	path, err := svc.Open(7, saved.Name)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	if err := svc.Delete(7, saved.Name); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(7, saved.Name); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("want ErrUploadNotFound on second delete got %v", err)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := newUploadTestService(t)
	content := bytes.Repeat([]byte("a"), 5000)
	if _, err := svc.SaveFile(1, multipartFile(t, "big.txt", content)); !errors.Is(err, ErrUploadTooLarge) {
		t.Fatalf("want ErrUploadTooLarge got %v", err)
	}
	files, _ := svc.List(1)
	if len(files) != 0 {
		t.Fatalf("want nothing stored got %+v", files)
	}
}

func TestUploadRejectsDisallowedTypes(t *testing.T) {
	svc := newUploadTestService(t)
	cases := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"extension not allowed", "script.sh", []byte("#!/bin/sh\necho hi\n")},
		{"no extension", "README", []byte("hello")},
		{"html behind txt", "page.txt", []byte("<html><body><script>alert(1)</script></body></html>")},
		{"text behind png", "fake.png", []byte("just some text")},
		{"png behind pdf", "doc.pdf", pngBytes(t, 4, 4)},
	}
	for _, tc := range cases {
		if _, err := svc.SaveFile(1, multipartFile(t, tc.filename, tc.content)); !errors.Is(err, ErrUploadTypeNotAllowed) {
			t.Fatalf("%s: want ErrUploadTypeNotAllowed got %v", tc.name, err)
		}
	}
}

func TestUploadRejectsLargeImageDimensions(t *testing.T) {
	svc := newUploadTestService(t)
	if _, err := svc.SaveFile(1, multipartFile(t, "wide.png", pngBytes(t, 64, 4))); !errors.Is(err, ErrUploadImageTooLarge) {
		t.Fatalf("want ErrUploadImageTooLarge got %v", err)
	}
}

func TestUploadRejectsUnsafeNames(t *testing.T) {
	svc := newUploadTestService(t)
	for _, name := range []string{"", "../secret.txt", "..", ".hidden", `a\b.txt`} {
		if _, err := svc.Open(1, name); !errors.Is(err, ErrUploadInvalidName) {
			t.Fatalf("name %q: want ErrUploadInvalidName got %v", name, err)
		}
	}
}
