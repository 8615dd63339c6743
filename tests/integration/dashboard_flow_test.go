package integration

import (
	"net/http"
	"testing"
	"time"

	"altvest/internal/models"
)

func TestDashboardFlow_ConsolidatedPosition(t *testing.T) {
	app := setupApp(t)
	ownerToken, _ := app.registerUserWithRole(t, "sponsor@test.com", "password123", models.RoleAdmin)
	investorToken, investorID := app.registerUser(t, "holder@test.com", "password123")

	rec := app.request("POST", "/api/v1/structures", `{"name":"Evergreen Fund"}`, ownerToken)
	fund := parseJSON(t, rec)["structure"].(map[string]interface{})
	fundID := fund["id"].(string)

	rec = app.request("POST", "/api/v1/structures/"+fundID+"/investors",
		`{"user_id":"`+investorID+`","commitment_amount":500000,"ownership_percent":10}`, ownerToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Seed a funded capital call and a paid distribution for the investor.
	call := &models.CapitalCall{
		StructureID: fundID,
		CallNumber:  1,
		TotalAmount: 300000,
		Status:      models.CapitalCallStatusFunded,
		CallDate:    time.Now(),
	}
	if err := app.DB.Create(call).Error; err != nil {
		t.Fatalf("failed to seed capital call: %v", err)
	}
	if err := app.DB.Create(&models.CapitalCallAllocation{
		CapitalCallID:   call.ID,
		UserID:          investorID,
		AllocatedAmount: 300000,
	}).Error; err != nil {
		t.Fatalf("failed to seed call allocation: %v", err)
	}

	dist := &models.Distribution{
		StructureID:      fundID,
		TotalAmount:      25000,
		Source:           models.DistributionSourceIncome,
		Status:           models.DistributionStatusPaid,
		DistributionDate: time.Now(),
	}
	if err := app.DB.Create(dist).Error; err != nil {
		t.Fatalf("failed to seed distribution: %v", err)
	}
	if err := app.DB.Create(&models.DistributionAllocation{
		DistributionID:  dist.ID,
		UserID:          investorID,
		AllocatedAmount: 25000,
	}).Error; err != nil {
		t.Fatalf("failed to seed distribution allocation: %v", err)
	}

	rec = app.request("GET", "/api/v1/dashboard", "", investorToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	dashboard := parseJSON(t, rec)

	structures := dashboard["structures"].([]interface{})
	if len(structures) != 1 {
		t.Fatalf("expected 1 structure row, got %d", len(structures))
	}
	row := structures[0].(map[string]interface{})
	if row["commitment"].(float64) != 500000 {
		t.Errorf("expected commitment 500000, got %v", row["commitment"])
	}
	if row["called_capital"].(float64) != 300000 {
		t.Errorf("expected called capital 300000, got %v", row["called_capital"])
	}
	if row["current_value"].(float64) != 300000 {
		t.Errorf("expected current value at cost 300000, got %v", row["current_value"])
	}

	summary := dashboard["summary"].(map[string]interface{})
	if summary["total_distributed"].(float64) != 25000 {
		t.Errorf("expected total distributed 25000, got %v", summary["total_distributed"])
	}
	if summary["total_return"].(float64) != 25000 {
		t.Errorf("expected total return 25000, got %v", summary["total_return"])
	}
	if summary["total_return_percent"].(float64) != 8.33 {
		t.Errorf("expected return percent 8.33, got %v", summary["total_return_percent"])
	}
}

func TestDashboardFlow_EmptyForUnlinkedInvestor(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "nobody@test.com", "password123")

	rec := app.request("GET", "/api/v1/dashboard", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	dashboard := parseJSON(t, rec)
	if len(dashboard["structures"].([]interface{})) != 0 {
		t.Error("expected no structure rows")
	}
	if len(dashboard["distributions"].([]interface{})) != 0 {
		t.Error("expected no distribution rows")
	}
}
