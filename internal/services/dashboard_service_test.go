package services

import (
	"reflect"
	"testing"

	"altvest/internal/models"
	"altvest/internal/testutil"
)

func TestBuildDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	owner := testutil.CreateTestUser(t, db, models.RoleAdmin)
	investor := testutil.CreateTestUser(t, db, models.RoleInvestor)
	structure := testutil.CreateTestStructure(t, db, owner.ID)

	// Commitment 500k, 300k called, no NAV mark, one 25k paid distribution.
	testutil.CreateTestInvestorLink(t, db, structure.ID, investor.ID, 500000)
	testutil.CreateTestCapitalCall(t, db, structure.ID, investor.ID, 300000)
	testutil.CreateTestDistribution(t, db, structure.ID, investor.ID, 25000, models.DistributionStatusPaid)

	dashboard, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)

	if len(dashboard.Structures) != 1 {
		t.Fatalf("expected 1 structure row, got %d", len(dashboard.Structures))
	}

	row := dashboard.Structures[0]
	if row.Commitment != 500000 {
		t.Errorf("expected commitment 500000, got %f", row.Commitment)
	}
	if row.CalledCapital != 300000 {
		t.Errorf("expected called capital 300000, got %f", row.CalledCapital)
	}
	// No NAV mark: valued at cost.
	if row.CurrentValue != 300000 {
		t.Errorf("expected current value 300000, got %f", row.CurrentValue)
	}
	if row.UnrealizedGain != 0 {
		t.Errorf("expected unrealized gain 0, got %f", row.UnrealizedGain)
	}

	summary := dashboard.Summary
	if summary.TotalDistributed != 25000 {
		t.Errorf("expected total distributed 25000, got %f", summary.TotalDistributed)
	}
	if summary.TotalReturn != 25000 {
		t.Errorf("expected total return 25000, got %f", summary.TotalReturn)
	}
	// 100 * 25000 / 300000 rounded to two decimals.
	if summary.TotalReturnPercent != 8.33 {
		t.Errorf("expected total return percent 8.33, got %f", summary.TotalReturnPercent)
	}
}

func TestBuildDashboardUsesNAVWhenMarked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	owner := testutil.CreateTestUser(t, db, models.RoleAdmin)
	investor := testutil.CreateTestUser(t, db, models.RoleInvestor)
	structure := testutil.CreateTestStructure(t, db, owner.ID)
	db.Model(structure).Update("current_nav", 420000.0)

	testutil.CreateTestInvestorLink(t, db, structure.ID, investor.ID, 500000)
	testutil.CreateTestCapitalCall(t, db, structure.ID, investor.ID, 300000)

	dashboard, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)

	row := dashboard.Structures[0]
	if row.CurrentValue != 420000 {
		t.Errorf("expected NAV-based current value 420000, got %f", row.CurrentValue)
	}
	if row.UnrealizedGain != 120000 {
		t.Errorf("expected unrealized gain 120000, got %f", row.UnrealizedGain)
	}
}

func TestBuildDashboardPendingDistributionsExcludedFromTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	owner := testutil.CreateTestUser(t, db, models.RoleAdmin)
	investor := testutil.CreateTestUser(t, db, models.RoleInvestor)
	structure := testutil.CreateTestStructure(t, db, owner.ID)

	testutil.CreateTestInvestorLink(t, db, structure.ID, investor.ID, 100000)
	testutil.CreateTestDistribution(t, db, structure.ID, investor.ID, 10000, models.DistributionStatusPaid)
	testutil.CreateTestDistribution(t, db, structure.ID, investor.ID, 5000, models.DistributionStatusPending)

	dashboard, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)

	// Both rows listed, only the paid one counted.
	if len(dashboard.Distributions) != 2 {
		t.Fatalf("expected 2 distribution rows, got %d", len(dashboard.Distributions))
	}
	if dashboard.Summary.TotalDistributed != 10000 {
		t.Errorf("expected total distributed 10000, got %f", dashboard.Summary.TotalDistributed)
	}
}

func TestBuildDashboardUnknownStructureLabel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	owner := testutil.CreateTestUser(t, db, models.RoleAdmin)
	investor := testutil.CreateTestUser(t, db, models.RoleInvestor)
	structure := testutil.CreateTestStructure(t, db, owner.ID)

	// Distribution allocation without an investor link to its structure.
	testutil.CreateTestDistribution(t, db, structure.ID, investor.ID, 7500, models.DistributionStatusPaid)

	dashboard, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)

	if len(dashboard.Distributions) != 1 {
		t.Fatalf("expected 1 distribution row, got %d", len(dashboard.Distributions))
	}
	if dashboard.Distributions[0].StructureName != "Unknown Structure" {
		t.Errorf("expected degraded label, got %q", dashboard.Distributions[0].StructureName)
	}
	if dashboard.Summary.TotalDistributed != 7500 {
		t.Errorf("expected the degraded row to still count, got %f", dashboard.Summary.TotalDistributed)
	}
}

func TestBuildDashboardExcludesDeletedStructures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)
	structures := NewStructureService(db, NewAccessService(db))

	owner := testutil.CreateTestUser(t, db, models.RoleAdmin)
	investor := testutil.CreateTestUser(t, db, models.RoleInvestor)
	structure := testutil.CreateTestStructure(t, db, owner.ID)
	testutil.CreateTestInvestorLink(t, db, structure.ID, investor.ID, 500000)

	err := structures.DeleteStructure(Caller{ID: owner.ID, Role: models.RoleAdmin}, structure.ID)
	testutil.AssertNoError(t, err)

	dashboard, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)

	// The deleted structure must not surface as a ghost row, and its
	// commitment must not count toward the totals.
	if len(dashboard.Structures) != 0 {
		t.Fatalf("expected no structure rows after delete, got %d", len(dashboard.Structures))
	}
	if dashboard.Summary.TotalCommitment != 0 {
		t.Errorf("expected total commitment 0 after delete, got %f", dashboard.Summary.TotalCommitment)
	}
}

func TestBuildDashboardZeroCalledCapital(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	owner := testutil.CreateTestUser(t, db, models.RoleAdmin)
	investor := testutil.CreateTestUser(t, db, models.RoleInvestor)
	structure := testutil.CreateTestStructure(t, db, owner.ID)

	testutil.CreateTestInvestorLink(t, db, structure.ID, investor.ID, 250000)
	testutil.CreateTestDistribution(t, db, structure.ID, investor.ID, 1000, models.DistributionStatusPaid)

	dashboard, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)

	if dashboard.Summary.TotalReturnPercent != 0 {
		t.Errorf("expected return percent 0 with no called capital, got %f", dashboard.Summary.TotalReturnPercent)
	}
	if dashboard.Summary.TotalReturn != 1000 {
		t.Errorf("expected total return 1000, got %f", dashboard.Summary.TotalReturn)
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	investor := testutil.CreateTestUser(t, db, models.RoleInvestor)

	dashboard, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)

	if len(dashboard.Structures) != 0 || len(dashboard.Distributions) != 0 {
		t.Error("expected empty dashboard for an unlinked investor")
	}
	if dashboard.Summary != (DashboardSummary{}) {
		t.Errorf("expected zero summary, got %+v", dashboard.Summary)
	}
}

func TestBuildDashboardIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	owner := testutil.CreateTestUser(t, db, models.RoleAdmin)
	investor := testutil.CreateTestUser(t, db, models.RoleInvestor)
	structure := testutil.CreateTestStructure(t, db, owner.ID)

	testutil.CreateTestInvestorLink(t, db, structure.ID, investor.ID, 500000)
	testutil.CreateTestCapitalCall(t, db, structure.ID, investor.ID, 300000)
	testutil.CreateTestDistribution(t, db, structure.ID, investor.ID, 25000, models.DistributionStatusPaid)

	first, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)
	second, err := svc.BuildDashboard(investor.ID)
	testutil.AssertNoError(t, err)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical output on unchanged records")
	}
}
