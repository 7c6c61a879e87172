package public

import (
	"github.com/catalog-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha issues an image captcha challenge.
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondMappedError(c, err, captchaErrorRules)
		return
	}
	response.Success(c, challenge)
}
