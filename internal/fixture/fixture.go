// Package fixture builds throwaway databases and seed rows for tests.
package fixture

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"beanline/database"
	"beanline/entities"
	"beanline/pkg/auth"
)

var (
	Admin   = auth.Actor{ID: "admin-1", Role: auth.RoleAdmin}
	Manager = auth.Actor{ID: "mgr-1", Role: auth.RoleManager, ScopeID: "coop-a"}
	Expert  = auth.Actor{ID: "exp-1", Role: auth.RoleExpert, ScopeID: "coop-a"}
	Outside = auth.Actor{ID: "exp-9", Role: auth.RoleExpert, ScopeID: "coop-z"}
	Farmer  = auth.Actor{ID: "farmer-1", Role: auth.RoleFarmer, ScopeID: "coop-a"}
	Other   = auth.Actor{ID: "farmer-2", Role: auth.RoleFarmer, ScopeID: "coop-a"}
)

func DB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// WashedMethod is harvesting, pulping, fermentation, washing, drying and
// hulling; only fermentation is optional.
func WashedMethod(t testing.TB, db *gorm.DB) *entities.ProcessingMethod {
	t.Helper()
	m := &entities.ProcessingMethod{
		Code: "WASHED",
		Name: "Washed",
		Stages: []entities.ProcessingStage{
			{Code: "harvesting", Name: "Harvesting", OrderIndex: 1, IsRequired: true},
			{Code: "pulping", Name: "Pulping", OrderIndex: 2, IsRequired: true},
			{Code: "fermentation", Name: "Fermentation", OrderIndex: 3},
			{Code: "washing", Name: "Washing", OrderIndex: 4, IsRequired: true},
			{Code: "drying", Name: "Drying", OrderIndex: 5, IsRequired: true},
			{Code: "hulling", Name: "Hulling", OrderIndex: 6, IsRequired: true},
		},
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed method: %v", err)
	}
	return m
}

func Batch(t testing.TB, db *gorm.DB, methodID uint, owner auth.Actor) *entities.ProcessingBatch {
	t.Helper()
	var n int64
	db.Model(&entities.ProcessingBatch{}).Unscoped().Count(&n)
	b := &entities.ProcessingBatch{
		Code:          "PB-TEST-" + string(rune('A'+n)),
		FarmerID:      owner.ID,
		ScopeID:       owner.ScopeID,
		MethodID:      methodID,
		InputQuantity: 500,
		InputUnit:     "kg",
		Status:        "InProgress",
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return b
}

// Progress records steps directly, skipping validation.
func Progress(t testing.TB, db *gorm.DB, b *entities.ProcessingBatch, m *entities.ProcessingMethod, step int, outputQty float64, unit string) *entities.ProcessingBatchProgress {
	t.Helper()
	var stageID uint
	for _, st := range m.Stages {
		if st.OrderIndex == step {
			stageID = st.ID
		}
	}
	p := &entities.ProcessingBatchProgress{BatchID: b.ID, StageID: stageID, StepIndex: step, OutputQuantity: outputQty, OutputUnit: unit}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}
	return p
}
