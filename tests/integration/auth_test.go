package integration

import (
	"fmt"
	"net/http"
	"testing"

	"altvest/internal/models"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	token, userID := app.registerUser(t, "investor@test.com", "password123")
	if token == "" || userID == "" {
		t.Fatal("expected token and user ID from registration")
	}

	// New accounts start as investors.
	rec := app.request("GET", "/api/v1/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["role"] != "investor" {
		t.Errorf("expected role investor, got %v", user["role"])
	}

	// Login with the same credentials.
	loginToken := app.loginUser(t, "investor@test.com", "password123")
	if loginToken == "" {
		t.Fatal("expected token from login")
	}
}

func TestAuth_InvalidCredentials(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "creds@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"creds@test.com","password":"wrong-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	errBody := parseJSON(t, rec)["error"].(map[string]interface{})
	if errBody["code"] != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %v", errBody["code"])
	}
}

func TestAuth_DuplicateEmail(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "dupe@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"email":"dupe@test.com","password":"password456"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_ProtectedRouteRequiresToken(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/profile", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/profile", "", "not-a-real-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rec.Code)
	}
}

func TestAuth_UpdateRoleRootOnly(t *testing.T) {
	app := setupApp(t)

	rootToken, _ := app.registerUserWithRole(t, "root@test.com", "password123", models.RoleRoot)
	investorToken, _ := app.registerUser(t, "plain@test.com", "password123")
	_, targetID := app.registerUser(t, "target@test.com", "password123")

	t.Run("root promotes a user", func(t *testing.T) {
		rec := app.request("PUT", fmt.Sprintf("/api/v1/users/%s/role", targetID), `{"role":1}`, rootToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["role"] != "admin" {
			t.Errorf("expected role admin, got %v", user["role"])
		}
	})

	t.Run("non-root is denied", func(t *testing.T) {
		rec := app.request("PUT", fmt.Sprintf("/api/v1/users/%s/role", targetID), `{"role":2}`, investorToken)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid role code", func(t *testing.T) {
		rec := app.request("PUT", fmt.Sprintf("/api/v1/users/%s/role", targetID), `{"role":9}`, rootToken)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
