package admin

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/models"
)

func TestLoginIssuesTokenAccepted(t *testing.T) {
	f := setupAdminFixture(t)
	hash, err := f.handler.AuthService.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	if err := f.db.Create(&models.Admin{Username: "ops", PasswordHash: hash}).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	env := decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/login", map[string]string{"username": "ops", "password": "s3cret-pass"}))
	if env.StatusCode != response.CodeOK {
		t.Fatalf("expected login success, got %d %s", env.StatusCode, env.Msg)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	claims, err := f.handler.AuthService.Authorize(data.Token)
	if err != nil {
		t.Fatalf("issued token rejected: %v", err)
	}
	if claims.Username != "ops" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	env = decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/login", map[string]string{"username": "ops", "password": "wrong"}))
	if env.StatusCode != response.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %d", env.StatusCode)
	}
	env = decodeEnvelope(t, f.do(t, http.MethodPost, "/admin/login", map[string]string{"username": "ops"}))
	if env.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request, got %d", env.StatusCode)
	}
}
