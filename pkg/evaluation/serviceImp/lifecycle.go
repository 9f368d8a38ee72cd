package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	batchRepoImp "beanline/pkg/batch/repositoryImp"
	repoImp "beanline/pkg/evaluation/repositoryImp"
	"beanline/pkg/evaluation/service"
)

// SoftDelete hides a live evaluation. An already deleted one is not found.
func (s *evalSvc) SoftDelete(ctx context.Context, actor auth.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repoImp.New(tx)
		e, err := r.FindByID(id)
		if err != nil {
			return err
		}
		b, err := batchRepoImp.New(tx).FindAny(e.BatchID)
		if err != nil {
			return err
		}
		if !actor.CanEvaluate(b.ScopeID) {
			return fmt.Errorf("evaluation %d: %w", id, apperr.ErrForbidden)
		}
		return r.SoftDelete(id)
	})
}

// Restore only applies to soft-deleted evaluations; a live one is not found.
func (s *evalSvc) Restore(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatchEvaluation, error) {
	var out *entities.ProcessingBatchEvaluation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repoImp.New(tx)
		e, err := r.FindDeleted(id)
		if err != nil {
			return err
		}
		b, err := batchRepoImp.New(tx).FindAny(e.BatchID)
		if err != nil {
			return err
		}
		if !actor.CanRestore(b.ScopeID) {
			return fmt.Errorf("evaluation %d: restore needs an admin or the scope's manager: %w", id, apperr.ErrForbidden)
		}
		if err := r.Restore(id); err != nil {
			return err
		}
		out, err = r.FindByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *evalSvc) HardDelete(ctx context.Context, actor auth.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repoImp.New(tx)
		e, err := r.FindAny(id)
		if err != nil {
			return err
		}
		if !actor.CanHardDelete() {
			return fmt.Errorf("evaluation %d: hard delete needs an admin: %w", id, apperr.ErrForbidden)
		}
		log.Printf("[audit] hard-delete evaluation %d (batch %d) by %s at %s", id, e.BatchID, actor.ID, time.Now().Format(time.RFC3339))
		if err := tx.Create(&entities.AuditLog{Action: "evaluation.hard_delete", ActorID: actor.ID, TargetType: "evaluation", TargetIDs: []uint{id}}).Error; err != nil {
			return err
		}
		return r.HardDelete(id)
	})
}

// BulkHardDelete removes each id inside its own savepoint so one bad row does
// not undo the rest. Cancelling ctx rolls back the whole operation.
func (s *evalSvc) BulkHardDelete(ctx context.Context, actor auth.Actor, ids []uint) (*service.BulkResult, error) {
	if !actor.CanHardDelete() {
		return nil, fmt.Errorf("bulk hard delete needs an admin: %w", apperr.ErrForbidden)
	}
	if len(ids) == 0 || len(ids) > service.MaxBulkDelete {
		return nil, fmt.Errorf("bulk hard delete takes 1..%d ids, got %d: %w", service.MaxBulkDelete, len(ids), apperr.ErrInvalidParameters)
	}

	res := &service.BulkResult{OperationID: uuid.New().String(), Requested: len(ids), Items: make([]service.BulkItem, 0, len(ids))}
	log.Printf("[audit] bulk hard-delete %s: %d evaluations by %s at %s", res.OperationID, len(ids), actor.ID, time.Now().Format(time.RFC3339))
	audit := &entities.AuditLog{
		Action:     "evaluation.bulk_hard_delete",
		ActorID:    actor.ID,
		TargetType: "evaluation",
		TargetIDs:  ids,
		Detail:     "operation " + res.OperationID,
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(audit).Error; err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := service.BulkItem{ID: id, Status: "deleted"}
			err := tx.Transaction(func(inner *gorm.DB) error {
				r := repoImp.New(inner)
				if _, err := r.FindAny(id); err != nil {
					return err
				}
				return r.HardDelete(id)
			})
			switch {
			case err == nil:
				res.Deleted++
			case errors.Is(err, apperr.ErrNotFound):
				item.Status = "not_found"
				res.Failed++
			default:
				item.Status, item.Error = "failed", err.Error()
				res.Failed++
			}
			res.Items = append(res.Items, item)
		}
		return ctx.Err()
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Printf("[audit] bulk hard-delete %s cancelled, nothing removed", res.OperationID)
			return nil, ctxErr
		}
		return nil, err
	}
	log.Printf("[audit] bulk hard-delete %s: %d deleted, %d failed", res.OperationID, res.Deleted, res.Failed)
	return res, nil
}
