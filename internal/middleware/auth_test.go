package middleware

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/vikoba/internal/auth"
	"github.com/mmynk/vikoba/internal/models"
)

type actor struct {
	memberID string
	role     models.Role
}

func TestRoleInterceptor(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	adminToken, err := jwtManager.Generate("chair", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	otherToken, err := auth.NewJWTManager("other-secret", time.Hour).Generate("chair", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   actor
		code   connect.Code
	}{
		{name: "no header acts as member", header: "", want: actor{"", models.RoleMember}},
		{name: "admin token", header: "Bearer " + adminToken, want: actor{"chair", models.RoleAdmin}},
		{name: "wrong scheme", header: "Token " + adminToken, code: connect.CodeUnauthenticated},
		{name: "foreign signature", header: "Bearer " + otherToken, code: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got actor
			next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				got = actor{GetMemberID(ctx), GetRole(ctx)}
				return nil, nil
			})

			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := RoleInterceptor(jwtManager)(next)(context.Background(), req)
			if tt.code != 0 {
				if connect.CodeOf(err) != tt.code {
					t.Fatalf("expected %s, got %v", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestGetRoleDefault(t *testing.T) {
	if role := GetRole(context.Background()); role != models.RoleMember {
		t.Errorf("expected member, got %s", role)
	}
	if id := GetMemberID(context.Background()); id != "" {
		t.Errorf("expected empty member ID, got %q", id)
	}
}
