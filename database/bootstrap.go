// database/bootstrap.go
package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/failurecodec"
)

// OpenSQLite opens and migrates the database, exiting on failure.
func OpenSQLite(path string) *gorm.DB {
	db, err := Open(path)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	n, err := MigrateLegacyFailures(db)
	if err != nil {
		log.Fatalf("migrate failures: %v", err)
	}
	if n > 0 {
		log.Printf("[db] moved failure info of %d evaluations out of comments", n)
	}
	return db
}

// Open is OpenSQLite without the exit, for tools and tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite takes one writer at a time; queue in the pool instead of
	// failing with SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&entities.ProcessingMethod{},
		&entities.ProcessingStage{},
		&entities.ProcessingBatch{},
		&entities.ProcessingBatchProgress{},
		&entities.ProcessingBatchWaste{},
		&entities.ProcessingBatchEvaluation{},
		&entities.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := ensureLiveStepIndex(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ensureLiveStepIndex creates the partial unique index that keeps two live
// progress rows off the same step of a batch. Soft-deleted rows are outside
// the index so a step can be recorded again after deletion.
func ensureLiveStepIndex(db *gorm.DB) error {
	var name string
	if err := db.Raw(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_progress_batch_step_live'`).Scan(&name).Error; err != nil {
		return fmt.Errorf("check index exist: %w", err)
	}
	if name != "" {
		return nil
	}
	var dupes int64
	if err := db.Raw(`
SELECT COUNT(*) FROM (
    SELECT batch_id, step_index FROM processing_batch_progresses
    WHERE deleted_at IS NULL
    GROUP BY batch_id, step_index HAVING COUNT(*) > 1
)`).Scan(&dupes).Error; err != nil {
		return fmt.Errorf("check duplicate steps: %w", err)
	}
	if dupes > 0 {
		return fmt.Errorf("%d (batch, step) pairs have more than one live progress row; soft-delete the extras first", dupes)
	}
	return db.Exec(`CREATE UNIQUE INDEX idx_progress_batch_step_live
    ON processing_batch_progresses(batch_id, step_index)
    WHERE deleted_at IS NULL`).Error
}

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// MigrateLegacyFailures copies failure records embedded in evaluation
// comments into the failure column. Comments are left as they are. Rows
// whose comments do not decode are skipped. Safe to run more than once.
func MigrateLegacyFailures(db *gorm.DB) (int, error) {
	moved := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var rows []entities.ProcessingBatchEvaluation
		if err := tx.Unscoped().
			Where("(failure IS NULL OR failure = 'null') AND comments LIKE ?", "%FAILED_STAGE_ID:%").
			Find(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			info, ok := failurecodec.Decode(rows[i].Comments)
			if !ok {
				log.Printf("[db] evaluation %d: comments carry a failure tag but do not decode, skipped", rows[i].ID)
				continue
			}
			rows[i].Failure = &info
			if err := tx.Unscoped().Model(&rows[i]).Select("failure").Updates(&rows[i]).Error; err != nil {
				return fmt.Errorf("evaluation %d: %w", rows[i].ID, err)
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}
