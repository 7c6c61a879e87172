package public

import (
	"errors"
	"net/http"

	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/service"

	"github.com/gin-gonic/gin"
)

// multipart framing on top of the file itself
const uploadEnvelopeSlack = 1 << 20

// UploadFile stores the multipart field "file" for the caller.
func (h *Handler) UploadFile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	limit := h.UploadService.MaxSize()
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+uploadEnvelopeSlack)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || (limit > 0 && c.Request.ContentLength > limit+uploadEnvelopeSlack) {
			respondMappedError(c, service.ErrUploadTooLarge, uploadErrorRules)
			return
		}
		respondMappedError(c, service.ErrUploadMissing, uploadErrorRules)
		return
	}

	uploaded, err := h.UploadService.SaveFile(uid, file)
	if err != nil {
		respondMappedError(c, err, uploadErrorRules)
		return
	}
	logger.Infow("upload_saved", "user_id", uid, "name", uploaded.Name, "size", uploaded.Size, "mimetype", uploaded.MimeType)
	response.Created(c, "file uploaded", gin.H{"file": uploaded})
}

// ListUploads lists the caller's files.
func (h *Handler) ListUploads(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	files, err := h.UploadService.List(uid)
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.Success(c, files)
}

// GetUpload downloads one of the caller's files.
func (h *Handler) GetUpload(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	name := c.Param("filename")
	path, err := h.UploadService.Open(uid, name)
	if err != nil {
		respondMappedError(c, err, uploadErrorRules)
		return
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.FileAttachment(path, name)
}

// DeleteUpload removes one of the caller's files.
func (h *Handler) DeleteUpload(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	name := c.Param("filename")
	if err := h.UploadService.Delete(uid, name); err != nil {
		respondMappedError(c, err, uploadErrorRules)
		return
	}
	logger.Infow("upload_deleted", "user_id", uid, "name", name)
	response.SuccessWithMsg(c, "file deleted", gin.H{"filename": name})
}
