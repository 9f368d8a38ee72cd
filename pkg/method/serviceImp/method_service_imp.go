package serviceImp

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"beanline/entities"
	"beanline/pkg/apperr"
	"beanline/pkg/auth"
	repoImp "beanline/pkg/method/repositoryImp"
	"beanline/pkg/method/service"
)

type methodSvc struct{ db *gorm.DB }

func NewMethodService(db *gorm.DB) service.MethodService { return &methodSvc{db} }

func (s *methodSvc) Create(ctx context.Context, actor auth.Actor, in service.CreateMethodInput) (*entities.ProcessingMethod, error) {
	if !actor.ManagesReferenceData() {
		return nil, fmt.Errorf("only admins and managers define methods: %w", apperr.ErrForbidden)
	}
	m, err := buildMethod(in)
	if err != nil {
		return nil, err
	}
	if err := repoImp.New(s.db.WithContext(ctx)).Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

// buildMethod validates the template. Stages sent without order indexes are
// numbered by position.
func buildMethod(in service.CreateMethodInput) (*entities.ProcessingMethod, error) {
	bad := func(format string, args ...any) error {
		return fmt.Errorf(format+": %w", append(args, apperr.ErrInvalidParameters)...)
	}
	code, name := strings.TrimSpace(in.Code), strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, bad("method code and name are required")
	}
	if len(in.Stages) == 0 {
		return nil, bad("method %s has no stages", code)
	}
	numbered := true
	for _, st := range in.Stages {
		if st.OrderIndex != 0 {
			numbered = false
		}
	}

	m := &entities.ProcessingMethod{Code: code, Name: name}
	seenIdx := map[int]bool{}
	seenCode := map[string]bool{}
	for i, st := range in.Stages {
		idx := st.OrderIndex
		if numbered {
			idx = i + 1
		}
		sc := strings.TrimSpace(st.Code)
		if sc == "" {
			return nil, bad("stage %d: code is required", i)
		}
		if idx < 1 {
			return nil, bad("stage %s: order_index must be >= 1", sc)
		}
		if seenIdx[idx] {
			return nil, bad("stage %s: order_index %d used twice", sc, idx)
		}
		if seenCode[strings.ToLower(sc)] {
			return nil, bad("stage code %s used twice", sc)
		}
		seenIdx[idx], seenCode[strings.ToLower(sc)] = true, true
		sn := strings.TrimSpace(st.Name)
		if sn == "" {
			sn = sc
		}
		m.Stages = append(m.Stages, entities.ProcessingStage{Code: sc, Name: sn, OrderIndex: idx, IsRequired: st.IsRequired})
	}
	return m, nil
}

func (s *methodSvc) Get(ctx context.Context, id uint) (*entities.ProcessingMethod, error) {
	return repoImp.New(s.db.WithContext(ctx)).FindByID(id)
}

func (s *methodSvc) List(ctx context.Context) ([]entities.ProcessingMethod, error) {
	return repoImp.New(s.db.WithContext(ctx)).List()
}

func (s *methodSvc) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repoImp.New(tx)
		if _, err := r.FindByID(id); err != nil {
			return err
		}
		if !actor.ManagesReferenceData() {
			return fmt.Errorf("method %d: %w", id, apperr.ErrForbidden)
		}
		n, err := r.CountBatches(id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("method %d is in use by %d batches: %w", id, n, apperr.ErrConflict)
		}
		return r.Delete(id)
	})
}
