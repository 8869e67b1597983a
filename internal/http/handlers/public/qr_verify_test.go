package public

import (
	"encoding/json"
	"testing"

	"github.com/scanpesa/internal/http/response"
)

func TestVerifyQRConsumesCodeOnce(t *testing.T) {
	f := setupPublicFixture(t)
	token, _ := f.issueToken(t)

	for i, want := range []bool{true, false} {
		env := decodeEnvelope(t, performJSON(t, f.handler.VerifyQR, "/api/v1/qr/verify", map[string]interface{}{"qr_id": token.ID}))
		if env.StatusCode != response.CodeOK {
			t.Fatalf("attempt %d: unexpected status %d", i, env.StatusCode)
		}
		var data struct {
			IsValid bool `json:"is_valid"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode data failed: %v", err)
		}
		if data.IsValid != want {
			t.Fatalf("attempt %d: expected is_valid=%v", i, want)
		}
	}
}

func TestVerifyQRRequiresIdentifier(t *testing.T) {
	f := setupPublicFixture(t)
	env := decodeEnvelope(t, performJSON(t, f.handler.VerifyQR, "/api/v1/qr/verify", map[string]interface{}{}))
	if env.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected bad request, got %d", env.StatusCode)
	}
}
