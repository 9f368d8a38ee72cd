package serviceImp

import (
	"fmt"
	"strings"

	"beanline/entities"
	"beanline/pkg/catalog"
	"beanline/pkg/failurecodec"
	"beanline/pkg/scoring"
	"beanline/pkg/textutil"
)

// target is the stage an evaluation is scored against. code is empty when
// the stage is not a catalog stage; the criteria set is then empty.
type target struct {
	code  catalog.StageCode
	stage *entities.ProcessingStage
}

func (t target) stageID() uint {
	if t.stage == nil {
		return 0
	}
	return t.stage.ID
}

func (t target) name() string {
	switch {
	case t.stage != nil && t.stage.Name != "":
		return t.stage.Name
	case t.stage != nil:
		return t.stage.Code
	case t.code != "":
		return string(t.code)
	default:
		return "unknown"
	}
}

func (t target) codeString() string {
	if t.code != "" {
		return string(t.code)
	}
	if t.stage != nil {
		return t.stage.Code
	}
	return ""
}

// stageCodeOf maps a template stage onto the catalog through its code, then
// its display name.
func stageCodeOf(st *entities.ProcessingStage) (catalog.StageCode, bool) {
	if st == nil {
		return "", false
	}
	if c, err := catalog.ParseStageCode(st.Code); err == nil {
		return c, true
	}
	if c, err := catalog.ParseStageCode(st.Name); err == nil {
		return c, true
	}
	return "", false
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

// deriveFailure fills in the failure record of a Fail verdict that arrived
// without one: the failed criteria become the details and the most severe
// catalog reasons of the stage the recommendations.
func deriveFailure(cat *catalog.Catalog, t target, outcomes []scoring.Outcome) *failurecodec.Info {
	var failed []string
	for _, o := range outcomes {
		if o.Pass {
			continue
		}
		label := o.Name
		if label == "" {
			label = o.CriteriaID
		}
		failed = append(failed, fmt.Sprintf("%s %g%s outside %s..%s", label, o.ActualValue, o.Unit, formatBound(o.Min), formatBound(o.Max)))
	}
	details := "failed by evaluator without criterion failures"
	if len(failed) > 0 {
		details = "failed criteria: " + strings.Join(failed, "; ")
	}

	var recs []string
	if t.code != "" {
		for _, r := range cat.MostSevere(t.code, 3) {
			recs = append(recs, fmt.Sprintf("check %s (%s)", strings.ToLower(r.Name), r.Code))
		}
	}
	return &failurecodec.Info{
		StageID:         t.stageID(),
		StageName:       t.name(),
		Details:         details,
		Recommendations: strings.Join(recs, "; "),
	}
}

func cleanFailure(f *failurecodec.Info) *failurecodec.Info {
	if f == nil {
		return nil
	}
	out := *f
	out.StageName = textutil.PlainText(out.StageName)
	out.Details = textutil.PlainText(out.Details)
	out.Recommendations = textutil.PlainText(out.Recommendations)
	return &out
}
