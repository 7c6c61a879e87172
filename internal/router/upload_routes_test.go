package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/http/response"
)

func (e *routerTestEnv) upload(t *testing.T, token, filename string, content []byte) (*httptest.ResponseRecorder, testEnvelope) {
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

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode upload response failed: %v (%s)", err, w.Body.String())
	}
	return w, env
}

func tinyPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}
	return buf.Bytes()
}

func TestUploadRoutes(t *testing.T) {
	env := setupRouterTest(t)
	_, ownerToken := env.createUser(t, "quinn", constants.RoleUser, true)
	_, otherToken := env.createUser(t, "rita", constants.RoleUser, true)
	_, unverifiedToken := env.createUser(t, "sam", constants.RoleUser, false)

	w, _ := env.upload(t, "", "a.png", tinyPNG(t, 2, 2))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous upload want 401 got %d", w.Code)
	}
	w, resp := env.upload(t, unverifiedToken, "a.png", tinyPNG(t, 2, 2))
	if w.Code != http.StatusForbidden || resp.ErrorCode != constants.ErrorCodeEmailNotVerified {
		t.Fatalf("unverified upload want 403 EMAIL_NOT_VERIFIED got %d %s", w.Code, resp.ErrorCode)
	}

	w, resp = env.upload(t, ownerToken, "big.txt", bytes.Repeat([]byte("x"), 2048))
	if w.Code != http.StatusRequestEntityTooLarge || resp.ErrorCode != response.CodePayloadTooLarge {
		t.Fatalf("oversized upload want 413 PAYLOAD_TOO_LARGE got %d %s", w.Code, resp.ErrorCode)
	}
	w, resp = env.upload(t, ownerToken, "run.exe", []byte("MZ\x90\x00"))
	if w.Code != http.StatusBadRequest || resp.ErrorCode != response.CodeValidation {
		t.Fatalf("disallowed extension want 400 VALIDATION_ERROR got %d %s", w.Code, resp.ErrorCode)
	}
	w, _ = env.upload(t, ownerToken, "note.txt", []byte("<html><script>alert(1)</script></html>"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("html disguised as txt want 400 got %d", w.Code)
	}

	w, resp = env.upload(t, ownerToken, "pixel.png", tinyPNG(t, 2, 2))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload want 201 got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		File struct {
			Name     string `json:"name"`
			Size     int64  `json:"size"`
			MimeType string `json:"mimetype"`
			URL      string `json:"url"`
		} `json:"file"`
	}
	decodeData(t, resp, &created)
	if created.File.MimeType != "image/png" || created.File.URL != "/upload/"+created.File.Name {
		t.Fatalf("unexpected upload payload %+v", created.File)
	}

	w, resp = env.do(t, http.MethodGet, "/upload", ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list want 200 got %d", w.Code)
	}
	var files []struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	}
	decodeData(t, resp, &files)
	if len(files) != 1 || files[0].Name != created.File.Name || files[0].Size != created.File.Size {
		t.Fatalf("want the uploaded file listed got %+v", files)
	}
	w, resp = env.do(t, http.MethodGet, "/upload", otherToken, nil)
	decodeData(t, resp, &files)
	if w.Code != http.StatusOK || len(files) != 0 {
		t.Fatalf("another user want empty list got %d %+v", w.Code, files)
	}

	path := "/upload/" + created.File.Name
	w, _ = env.do(t, http.MethodGet, path, ownerToken, nil)
	if w.Code != http.StatusOK || int64(w.Body.Len()) != created.File.Size {
		t.Fatalf("download want 200 with %d bytes got %d/%d", created.File.Size, w.Code, w.Body.Len())
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("want nosniff on downloads")
	}
	w, _ = env.do(t, http.MethodGet, path, otherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("other user download want 404 got %d", w.Code)
	}

	w, _ = env.do(t, http.MethodDelete, path, otherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("other user delete want 404 got %d", w.Code)
	}
	w, _ = env.do(t, http.MethodDelete, path, ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete want 200 got %d", w.Code)
	}
	w, _ = env.do(t, http.MethodDelete, path, ownerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete want 404 got %d", w.Code)
	}
}
