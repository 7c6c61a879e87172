package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catalog-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type bindTestRequest struct {
	Username string `json:"username" binding:"required,username"`
	Quantity int    `json:"quantity" binding:"min=1"`
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestBindJSONReportsFieldErrors(t *testing.T) {
	RegisterValidators()
	c, w := newTestContext(http.MethodPost, "/x", []byte(`{"username":"a!","quantity":0}`))

	var req bindTestRequest
	if BindJSON(c, &req) {
		t.Fatalf("want bind failure")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	var body struct {
		Errors []response.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Errors) != 2 {
		t.Fatalf("want 2 field errors got %+v", body.Errors)
	}
	if body.Errors[0].Field != "username" || body.Errors[0].Value != "a!" {
		t.Fatalf("unexpected first error: %+v", body.Errors[0])
	}
	if body.Errors[1].Field != "quantity" {
		t.Fatalf("unexpected second error: %+v", body.Errors[1])
	}
}

func TestBindJSONAcceptsValidBody(t *testing.T) {
	RegisterValidators()
	c, _ := newTestContext(http.MethodPost, "/x", []byte(`{"username":"alice_1","quantity":2}`))
	var req bindTestRequest
	if !BindJSON(c, &req) {
		t.Fatalf("want bind success")
	}
	if req.Username != "alice_1" || req.Quantity != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestRespondMappedError(t *testing.T) {
	target := errors.New("thing missing")
	rules := []MappedError{{Target: target, Status: http.StatusNotFound, Code: response.CodeNotFound}}

	c, w := newTestContext(http.MethodGet, "/x", nil)
	RespondMappedError(c, fmt.Errorf("%w: id 7", target), rules)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d", w.Code)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["message"] != "thing missing: id 7" {
		t.Fatalf("empty rule message should reuse error text, got %v", body["message"])
	}

	c, w = newTestContext(http.MethodGet, "/x", nil)
	RespondMappedError(c, errors.New("db exploded"), rules)
	body = map[string]interface{}{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusInternalServerError || body["message"] != internalErrorMessage {
		t.Fatalf("unmapped errors must be generic 500, got %d %v", w.Code, body)
	}
}

func TestParseIDParam(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/orders/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	if _, ok := ParseIDParam(c, "id"); ok {
		t.Fatalf("want failure for non-numeric id")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}

	c, _ = newTestContext(http.MethodGet, "/orders/12", nil)
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := ParseIDParam(c, "id")
	if !ok || id != 12 {
		t.Fatalf("want 12 got %d", id)
	}
}

func TestNormalizePagination(t *testing.T) {
	page, size := NormalizePagination(0, 500)
	if page != 1 || size != 100 {
		t.Fatalf("want 1/100 got %d/%d", page, size)
	}
}
