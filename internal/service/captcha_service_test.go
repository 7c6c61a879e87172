package service

import (
	"errors"
	"testing"

	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/constants"
)

func newTestCaptchaService(enabled bool) *CaptchaService {
	return NewCaptchaService(config.CaptchaConfig{
		Enabled: enabled,
		Scenes:  config.CaptchaSceneConfig{Register: true},
	})
}

func TestCaptchaDisabled(t *testing.T) {
	svc := newTestCaptchaService(false)
	if _, err := svc.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaDisabled) {
		t.Fatalf("want ErrCaptchaDisabled got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneRegister, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled captcha should pass verification, got %v", err)
	}
}

func TestCaptchaSceneToggle(t *testing.T) {
	svc := newTestCaptchaService(true)
	if !svc.IsSceneEnabled(constants.CaptchaSceneRegister) {
		t.Fatalf("register scene should be enabled")
	}
	if svc.IsSceneEnabled(constants.CaptchaSceneForgotPassword) {
		t.Fatalf("forgot password scene should be disabled")
	}
	if err := svc.Verify(constants.CaptchaSceneForgotPassword, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled scene should pass verification, got %v", err)
	}
}

func TestCaptchaVerifyIsSingleUse(t *testing.T) {
	svc := newTestCaptchaService(true)
	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("incomplete challenge: %+v", challenge)
	}
	answer := svc.store.Get(challenge.CaptchaID, false)
	if len(answer) != 5 {
		t.Fatalf("want default length 5 got %q", answer)
	}

	if err := svc.Verify(constants.CaptchaSceneRegister, CaptchaVerifyPayload{}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("want ErrCaptchaRequired got %v", err)
	}
	payload := CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: answer}
	if err := svc.Verify(constants.CaptchaSceneRegister, payload); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneRegister, payload); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("reused answer: want ErrCaptchaInvalid got %v", err)
	}
}

func TestNormalizeCaptchaImage(t *testing.T) {
	image := normalizeCaptchaImage(config.CaptchaImageConfig{Length: 6, Width: 10, ExpireSeconds: 120})
	if image.Length != 6 || image.Width != 240 || image.Height != 80 || image.ExpireSeconds != 120 || image.MaxStore != 10240 {
		t.Fatalf("unexpected normalized image: %+v", image)
	}
}
