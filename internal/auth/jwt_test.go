package auth

import (
	"testing"

	"github.com/silvioheinze/isr-field-sub000/internal/config"
)

// Perform token generation and verify the generated token to ensure VerifyJwtToken is correct
func TestJWT(t *testing.T) {
	cfg := config.AuthConfig{JWT_SECRET: "test-secret"}

	jwtService := NewJwt(cfg, nil)
	payload := JWTPayload{
		ID:          "id1234",
		Email:       "test@gmail.com",
		Username:    "tester",
		IsSuperuser: true,
	}
	refreshToken, accessToken, err := jwtService.GenerateRefreshAndAccessToken(payload)
	if err != nil {
		t.Fatalf(
			"An error occurred during refresh token and access token generation. Error: %v", err)
	}

	for _, token := range []*string{refreshToken, accessToken} {
		claims, err := jwtService.VerifyJwtToken(*token)
		if err != nil {
			t.Fatalf("An error occurred during token verification. Error: %v", err)
		}

		if claims.User != payload {
			t.Errorf("Expected claims user %v, got %v", payload, claims.User)
		}
	}

	otherService := NewJwt(config.AuthConfig{JWT_SECRET: "other-secret"}, nil)
	if _, err := otherService.VerifyJwtToken(*accessToken); err == nil {
		t.Error("Expected verification with a different secret to fail")
	}
}
