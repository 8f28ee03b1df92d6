package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
	"github.com/workloadhq/insights/internal/infra/storage/resilience"
)

func TestCreateUser(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"name": "Ana", "phone": "+15551234567", "role": "manager"}`))
	rec := f.do(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	if len(f.users.byID) != 1 {
		t.Fatalf("saved %d users, want 1", len(f.users.byID))
	}
	for _, u := range f.users.byID {
		if u.Role != domain.UserRoleManager {
			t.Errorf("role = %s, want manager", u.Role)
		}
		if !u.Active {
			t.Error("new users default to active")
		}
	}
}

func TestCreateUser_Validation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"phone": "+15551234567"}`},
		{"missing phone", `{"name": "Ana"}`},
		{"unknown role", `{"name": "Ana", "phone": "+1555", "role": "superuser"}`},
		{"bad json", `{"name": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tt.body))
			rec := f.do(req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetUser_NotFound(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+uuid.NewString(), nil)
	rec := f.do(req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid", nil)
	rec = f.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListUsers_DatabaseExhaustionIs503(t *testing.T) {
	f := newFixture()
	f.users.getErr = &resilience.ExhaustedError{Attempts: 3, Err: errConnReset}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := f.do(req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "reset") {
		t.Error("response must not leak connection details")
	}
}

func TestUpdateUser(t *testing.T) {
	f := newFixture()
	user := &domain.User{ID: uuid.New(), Name: "Ana", Phone: "+1555", Role: domain.UserRoleWorker, Active: true}
	f.users.byID[user.ID] = user

	req := httptest.NewRequest(http.MethodPut, "/api/users/"+user.ID.String(),
		strings.NewReader(`{"role": "admin", "active": false}`))
	rec := f.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if user.Role != domain.UserRoleAdmin {
		t.Errorf("role = %s, want admin", user.Role)
	}
	if user.Active {
		t.Error("active should be false after update")
	}
}
