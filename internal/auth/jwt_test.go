package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/vikoba/internal/models"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("treasurer", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.MemberID != "treasurer" {
		t.Errorf("member: expected 'treasurer', got '%s'", claims.MemberID)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("role: expected admin, got %s", claims.Role)
	}
}

func TestValidateRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := NewJWTManager("other-secret", time.Hour).Generate("a", models.RoleAdmin)
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, _ := NewJWTManager("test-secret", -time.Minute).Generate("a", models.RoleAdmin)
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestUnknownRoleFallsBackToMember(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, _ := m.Generate("a", models.Role("superuser"))

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Role != models.RoleMember {
		t.Errorf("expected member, got %s", claims.Role)
	}
}
