package serviceImp

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	batchRepoImp "beanline/pkg/batch/repositoryImp"
	"beanline/pkg/catalog"
	"beanline/pkg/evaluation/repository"
	repoImp "beanline/pkg/evaluation/repositoryImp"
	"beanline/pkg/evaluation/service"
	"beanline/pkg/failurecodec"
	"beanline/pkg/notify"
	progRepoImp "beanline/pkg/progress/repositoryImp"
	"beanline/pkg/scoring"
	"beanline/pkg/textutil"
)

type evalSvc struct {
	db     *gorm.DB
	cat    *catalog.Catalog
	notify notify.Notifier
}

func NewEvaluationService(db *gorm.DB, cat *catalog.Catalog, n notify.Notifier) service.EvaluationService {
	if n == nil {
		n = notify.NewLog()
	}
	return &evalSvc{db: db, cat: cat, notify: n}
}

// resolve picks the stage to score. An explicit code must be a catalog
// stage; without one the latest live progress entry decides, and a batch
// with no progress is scored against an empty set.
func (s *evalSvc) resolve(tx *gorm.DB, b *entities.ProcessingBatch, requested string) (target, error) {
	if requested != "" {
		code, err := catalog.ParseStageCode(requested)
		if err != nil {
			return target{}, err
		}
		t := target{code: code}
		var stages []entities.ProcessingStage
		if err := tx.Where("method_id = ?", b.MethodID).Order("order_index ASC").Find(&stages).Error; err != nil {
			return target{}, err
		}
		for i := range stages {
			if c, ok := stageCodeOf(&stages[i]); ok && c == code {
				t.stage = &stages[i]
				break
			}
		}
		return t, nil
	}

	latest, err := progRepoImp.New(tx).Latest(b.ID)
	if err != nil || latest == nil {
		return target{}, err
	}
	t := target{stage: latest.Stage}
	if c, ok := stageCodeOf(latest.Stage); ok {
		t.code = c
	} else {
		log.Printf("[eval] batch %d: stage %q is not in the catalog, scoring against no criteria", b.ID, t.codeString())
	}
	return t, nil
}

func (s *evalSvc) criteria(t target) []catalog.Criterion {
	if t.code == "" {
		return nil
	}
	return s.cat.Criteria(t.code)
}

// applyStatus moves the batch according to the asserted result. It reports
// whether the status actually changed.
func applyStatus(tx *gorm.DB, b *entities.ProcessingBatch, r scoring.Result) (from string, changed bool, err error) {
	from = b.Status
	next, ok := scoring.NextBatchStatus(r)
	if !ok || next == b.Status || b.DeletedAt.Valid {
		return from, false, nil
	}
	if err := batchRepoImp.New(tx).UpdateStatus(b.ID, next); err != nil {
		return from, false, err
	}
	b.Status = next
	return from, true, nil
}

func logDivergence(e *entities.ProcessingBatchEvaluation) bool {
	if e.AdvisoryResult == "" || e.AdvisoryResult == e.Result {
		return false
	}
	log.Printf("[eval] batch %d evaluation %d: %s asserted %s, score %.2f suggests %s",
		e.BatchID, e.ID, e.EvaluatorID, e.Result, e.TotalScore, e.AdvisoryResult)
	return true
}

func (s *evalSvc) announce(ctx context.Context, actor auth.Actor, b *entities.ProcessingBatch, from string, e *entities.ProcessingBatchEvaluation) {
	ev := notify.StatusChange{
		BatchID:      b.ID,
		BatchCode:    b.Code,
		FromStatus:   from,
		ToStatus:     b.Status,
		EvaluationID: e.ID,
		Result:       e.Result,
		ActorID:      actor.ID,
		At:           time.Now(),
	}
	if err := s.notify.BatchStatusChanged(ctx, ev); err != nil {
		log.Printf("[notify] batch %d: %v", b.ID, err)
	}
}

func (s *evalSvc) Evaluate(ctx context.Context, actor auth.Actor, in service.EvaluateInput) (*service.EvaluateResult, error) {
	verdict, err := scoring.ParseResult(in.Result)
	if err != nil {
		return nil, err
	}
	if in.Failure != nil && verdict != scoring.Fail {
		return nil, fmt.Errorf("failure details only go with a Fail result: %w", apperr.ErrInvalidParameters)
	}

	var (
		res     *service.EvaluateResult
		batch   *entities.ProcessingBatch
		from    string
		changed bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := batchRepoImp.New(tx).FindByID(in.BatchID)
		if err != nil {
			return err
		}
		if !actor.CanEvaluate(b.ScopeID) {
			return fmt.Errorf("batch %d: %w", b.ID, apperr.ErrForbidden)
		}
		t, err := s.resolve(tx, b, in.StageCode)
		if err != nil {
			return err
		}
		rep, err := scoring.Evaluate(s.criteria(t), in.Criteria)
		if err != nil {
			return err
		}

		e := &entities.ProcessingBatchEvaluation{
			BatchID:         b.ID,
			EvaluatorID:     actor.ID,
			StageID:         t.stageID(),
			StageCode:       t.codeString(),
			Result:          string(verdict),
			AdvisoryResult:  string(rep.Advisory),
			TotalScore:      rep.Score,
			Comments:        textutil.PlainText(in.Comments),
			CriteriaResults: rep.Outcomes,
		}
		if verdict == scoring.Fail {
			e.Failure = cleanFailure(in.Failure)
			if e.Failure == nil {
				e.Failure = deriveFailure(s.cat, t, rep.Outcomes)
			}
		}
		if err := repoImp.New(tx).Create(e); err != nil {
			return err
		}
		if from, changed, err = applyStatus(tx, b, verdict); err != nil {
			return err
		}
		batch = b
		res = &service.EvaluateResult{
			EvaluationID:       e.ID,
			Evaluation:         e,
			Score:              rep.Score,
			Verdict:            verdict,
			Advisory:           rep.Advisory,
			Diverges:           logDivergence(e),
			BatchStatus:        b.Status,
			BatchStatusUpdated: changed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.announce(ctx, actor, batch, from, res.Evaluation)
	}
	return res, nil
}

// visible loads a live evaluation with its batch, checking read access.
func visible(tx *gorm.DB, actor auth.Actor, id uint) (*entities.ProcessingBatchEvaluation, *entities.ProcessingBatch, error) {
	e, err := repoImp.New(tx).FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	b, err := batchRepoImp.New(tx).FindAny(e.BatchID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanSee(b.FarmerID, b.ScopeID) {
		return nil, nil, fmt.Errorf("evaluation %d: %w", id, apperr.ErrForbidden)
	}
	return e, b, nil
}

func (s *evalSvc) Get(ctx context.Context, actor auth.Actor, id uint) (*entities.ProcessingBatchEvaluation, error) {
	e, _, err := visible(s.db.WithContext(ctx), actor, id)
	return e, err
}

func (s *evalSvc) List(ctx context.Context, actor auth.Actor, f service.ListFilter) ([]entities.ProcessingBatchEvaluation, error) {
	v, ok := batchRepoImp.VisibilityFor(actor)
	if !ok {
		return []entities.ProcessingBatchEvaluation{}, nil
	}
	if f.IncludeDeleted && actor.Role != auth.RoleAdmin && actor.Role != auth.RoleManager {
		return nil, fmt.Errorf("listing deleted evaluations needs an admin or manager: %w", apperr.ErrForbidden)
	}
	return repoImp.New(s.db.WithContext(ctx)).List(repository.Filter{
		BatchID:        f.BatchID,
		FarmerID:       v.FarmerID,
		ScopeID:        v.ScopeID,
		IncludeDeleted: f.IncludeDeleted,
	})
}

func (s *evalSvc) Update(ctx context.Context, actor auth.Actor, id uint, patch service.EvaluationPatch) (*service.EvaluateResult, error) {
	var (
		res     *service.EvaluateResult
		batch   *entities.ProcessingBatch
		from    string
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, b, err := visible(tx, actor, id)
		if err != nil {
			return err
		}
		if !actor.CanEvaluate(b.ScopeID) {
			return fmt.Errorf("evaluation %d: %w", id, apperr.ErrForbidden)
		}
		verdict, err := scoring.ParseResult(e.Result)
		if err != nil {
			return fmt.Errorf("evaluation %d holds %w", id, err)
		}
		resultChanged := false
		if patch.Result != nil {
			r, err := scoring.ParseResult(*patch.Result)
			if err != nil {
				return err
			}
			resultChanged = r != verdict
			verdict = r
		}
		if patch.Failure != nil && verdict != scoring.Fail {
			return fmt.Errorf("failure details only go with a Fail result: %w", apperr.ErrInvalidParameters)
		}
		e.Result = string(verdict)
		if patch.Comments != nil {
			e.Comments = textutil.PlainText(*patch.Comments)
		}
		switch {
		case verdict != scoring.Fail:
			e.Failure = nil
		case patch.Failure != nil:
			e.Failure = cleanFailure(patch.Failure)
		case e.Failure == nil:
			if legacy, ok := failurecodec.Decode(e.Comments); ok {
				e.Failure = &legacy
			} else {
				t := target{code: catalog.StageCode(e.StageCode)}
				if !t.code.Valid() {
					t.code = ""
				}
				if e.StageID != 0 {
					var st entities.ProcessingStage
					if err := tx.Unscoped().First(&st, e.StageID).Error; err == nil {
						t.stage = &st
					}
				}
				e.Failure = deriveFailure(s.cat, t, e.CriteriaResults)
			}
		}
		if err := repoImp.New(tx).Update(e); err != nil {
			return err
		}
		if resultChanged {
			if from, changed, err = applyStatus(tx, b, verdict); err != nil {
				return err
			}
		}
		batch = b
		advisory, _ := scoring.ParseResult(e.AdvisoryResult)
		res = &service.EvaluateResult{
			EvaluationID:       e.ID,
			Evaluation:         e,
			Score:              e.TotalScore,
			Verdict:            verdict,
			Advisory:           advisory,
			Diverges:           resultChanged && logDivergence(e),
			BatchStatus:        b.Status,
			BatchStatusUpdated: changed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.announce(ctx, actor, batch, from, res.Evaluation)
	}
	return res, nil
}

// Failure prefers the structured column and falls back to a record embedded
// in the comments by older clients.
func (s *evalSvc) Failure(ctx context.Context, actor auth.Actor, id uint) (*service.FailureView, error) {
	e, _, err := visible(s.db.WithContext(ctx), actor, id)
	if err != nil {
		return nil, err
	}
	v := &service.FailureView{EvaluationID: e.ID}
	switch {
	case e.Failure != nil:
		v.Source, v.Failure = "column", e.Failure
	default:
		if info, ok := failurecodec.Decode(e.Comments); ok {
			v.Source, v.Failure = "comments", &info
		}
	}
	return v, nil
}

func (s *evalSvc) DecodeFailure(text string) *failurecodec.Info {
	info, ok := failurecodec.Decode(text)
	if !ok {
		return nil
	}
	return &info
}
