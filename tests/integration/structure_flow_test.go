package integration

import (
	"fmt"
	"net/http"
	"testing"

	"altvest/internal/models"
)

func TestStructureFlow_HierarchyLifecycle(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUserWithRole(t, "manager@test.com", "password123", models.RoleAdmin)

	// Step 1: Create a top-level fund.
	rec := app.request("POST", "/api/v1/structures",
		`{"name":"Flagship Fund I","base_currency":"EUR","management_fee":2,"carried_interest":20,"term_years":10}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	fund := parseJSON(t, rec)["structure"].(map[string]interface{})
	fundID := fund["id"].(string)
	if fund["hierarchy_level"].(float64) != 1 {
		t.Errorf("expected level 1, got %v", fund["hierarchy_level"])
	}
	if fund["base_currency"] != "EUR" {
		t.Errorf("expected EUR, got %v", fund["base_currency"])
	}

	// Step 2: Nest an SPV under it.
	rec = app.request("POST", "/api/v1/structures",
		fmt.Sprintf(`{"name":"SPV Alpha","parent_structure_id":%q}`, fundID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	spv := parseJSON(t, rec)["structure"].(map[string]interface{})
	spvID := spv["id"].(string)
	if spv["hierarchy_level"].(float64) != 2 {
		t.Errorf("expected level 2, got %v", spv["hierarchy_level"])
	}

	// Step 3: The fund's children list contains the SPV.
	rec = app.request("GET", fmt.Sprintf("/api/v1/structures/%s/children", fundID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	children := parseJSON(t, rec)
	if children["total_items"].(float64) != 1 {
		t.Fatalf("expected 1 child, got %v", children["total_items"])
	}

	// Step 4: Update financials through the sanctioned path.
	rec = app.request("PUT", fmt.Sprintf("/api/v1/structures/%s/financials", fundID),
		`{"total_called":300000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["structure"].(map[string]interface{})
	if updated["total_called"].(float64) != 300000 {
		t.Errorf("expected total_called 300000, got %v", updated["total_called"])
	}

	// Step 5: Deleting the fund is blocked while the SPV exists.
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/structures/%s", fundID), "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while children exist, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 6: Delete the SPV, then the fund.
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/structures/%s", spvID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/structures/%s", fundID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/structures/%s", fundID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestStructureFlow_DepthLimit(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUserWithRole(t, "deep@test.com", "password123", models.RoleAdmin)

	parentID := ""
	for level := 1; level <= 5; level++ {
		body := fmt.Sprintf(`{"name":"Level %d"}`, level)
		if parentID != "" {
			body = fmt.Sprintf(`{"name":"Level %d","parent_structure_id":%q}`, level, parentID)
		}
		rec := app.request("POST", "/api/v1/structures", body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 at level %d, got %d: %s", level, rec.Code, rec.Body.String())
		}
		structure := parseJSON(t, rec)["structure"].(map[string]interface{})
		if structure["hierarchy_level"].(float64) != float64(level) {
			t.Fatalf("expected level %d, got %v", level, structure["hierarchy_level"])
		}
		parentID = structure["id"].(string)
	}

	// A sixth level must be rejected.
	rec := app.request("POST", "/api/v1/structures",
		fmt.Sprintf(`{"name":"Level 6","parent_structure_id":%q}`, parentID), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 at level 6, got %d: %s", rec.Code, rec.Body.String())
	}
	errBody := parseJSON(t, rec)["error"].(map[string]interface{})
	if errBody["code"] != "MAX_DEPTH_EXCEEDED" {
		t.Errorf("expected MAX_DEPTH_EXCEEDED, got %v", errBody["code"])
	}
}

func TestStructureFlow_ParentOwnership(t *testing.T) {
	app := setupApp(t)
	ownerToken, _ := app.registerUserWithRole(t, "owner@test.com", "password123", models.RoleAdmin)
	otherToken, _ := app.registerUserWithRole(t, "other@test.com", "password123", models.RoleAdmin)
	rootToken, _ := app.registerUserWithRole(t, "platform@test.com", "password123", models.RoleRoot)

	rec := app.request("POST", "/api/v1/structures", `{"name":"Owned Fund"}`, ownerToken)
	fundID := parseJSON(t, rec)["structure"].(map[string]interface{})["id"].(string)

	// A non-owner admin cannot attach a child.
	rec = app.request("POST", "/api/v1/structures",
		fmt.Sprintf(`{"name":"Hostile SPV","parent_structure_id":%q}`, fundID), otherToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	// Root can.
	rec = app.request("POST", "/api/v1/structures",
		fmt.Sprintf(`{"name":"Platform SPV","parent_structure_id":%q}`, fundID), rootToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for root, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStructureFlow_Grants(t *testing.T) {
	app := setupApp(t)
	ownerToken, _ := app.registerUserWithRole(t, "granter@test.com", "password123", models.RoleAdmin)
	granteeToken, granteeID := app.registerUserWithRole(t, "grantee@test.com", "password123", models.RoleSupport)

	rec := app.request("POST", "/api/v1/structures", `{"name":"Granted Fund"}`, ownerToken)
	fundID := parseJSON(t, rec)["structure"].(map[string]interface{})["id"].(string)

	// Before the grant the grantee sees nothing.
	rec = app.request("GET", fmt.Sprintf("/api/v1/structures/%s", fundID), "", granteeToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before grant, got %d", rec.Code)
	}

	// Grant with delete withheld.
	rec = app.request("POST", fmt.Sprintf("/api/v1/structures/%s/admins", fundID),
		fmt.Sprintf(`{"user_id":%q,"role":"admin","can_delete":false}`, granteeID), ownerToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	grant := parseJSON(t, rec)["grant"].(map[string]interface{})
	if grant["can_delete"].(bool) {
		t.Error("expected can_delete to be withheld")
	}
	if !grant["can_edit"].(bool) {
		t.Error("expected can_edit to default true")
	}

	// Grantee may now view and edit, but not delete.
	rec = app.request("GET", fmt.Sprintf("/api/v1/structures/%s", fundID), "", granteeToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after grant, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("PUT", fmt.Sprintf("/api/v1/structures/%s", fundID),
		`{"description":"Updated by grantee"}`, granteeToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on edit, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/structures/%s", fundID), "", granteeToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on delete, got %d: %s", rec.Code, rec.Body.String())
	}

	// Duplicate grant rejected.
	rec = app.request("POST", fmt.Sprintf("/api/v1/structures/%s/admins", fundID),
		fmt.Sprintf(`{"user_id":%q,"role":"support"}`, granteeID), ownerToken)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate grant, got %d: %s", rec.Code, rec.Body.String())
	}

	// Revoke, then the grantee loses access.
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/structures/%s/admins/%s", fundID, granteeID), "", ownerToken)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on revoke, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/structures/%s", fundID), "", granteeToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after revoke, got %d", rec.Code)
	}
}

func TestStructureFlow_Investors(t *testing.T) {
	app := setupApp(t)
	ownerToken, _ := app.registerUserWithRole(t, "gp@test.com", "password123", models.RoleAdmin)
	investorToken, investorID := app.registerUser(t, "lp@test.com", "password123")

	rec := app.request("POST", "/api/v1/structures", `{"name":"LP Fund"}`, ownerToken)
	fundID := parseJSON(t, rec)["structure"].(map[string]interface{})["id"].(string)

	// Link the investor.
	rec = app.request("POST", fmt.Sprintf("/api/v1/structures/%s/investors", fundID),
		fmt.Sprintf(`{"user_id":%q,"commitment_amount":500000,"ownership_percent":12.5}`, investorID), ownerToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Linked investor gets read-only visibility.
	rec = app.request("GET", fmt.Sprintf("/api/v1/structures/%s", fundID), "", investorToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for linked investor, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("PUT", fmt.Sprintf("/api/v1/structures/%s", fundID),
		`{"description":"Investor edit attempt"}`, investorToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on investor edit, got %d: %s", rec.Code, rec.Body.String())
	}

	// Remove the link; visibility is gone.
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/structures/%s/investors/%s", fundID, investorID), "", ownerToken)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/structures/%s", fundID), "", investorToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after unlink, got %d", rec.Code)
	}
}
