package scoring

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"beanline/pkg/apperr"
	"beanline/pkg/catalog"
)

// Input is one measured value submitted for a criterion.
type Input struct {
	CriteriaID  string  `json:"criteria_id"`
	ActualValue float64 `json:"actual_value"`
}

type Outcome struct {
	CriteriaID  string   `json:"criteria_id"`
	Name        string   `json:"name"`
	ActualValue float64  `json:"actual_value"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Target      *float64 `json:"target,omitempty"`
	Deviation   *float64 `json:"deviation,omitempty"`
	Unit        string   `json:"unit"`
	Weight      float64  `json:"weight"`
	Required    bool     `json:"required"`
	Pass        bool     `json:"pass"`
}

type Report struct {
	Outcomes  []Outcome `json:"outcomes"`
	Evaluated int       `json:"evaluated"`
	Score     float64   `json:"score"`
	Advisory  Result    `json:"advisory"`
	// MissingRequired lists required criteria that had no measurement.
	MissingRequired []string `json:"missing_required,omitempty"`
}

func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Pass {
			out = append(out, o)
		}
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// Within reports whether actual lies inside the inclusive [min, max] range of
// c. Open bounds always pass.
func Within(c catalog.Criterion, actual float64) bool {
	v := decimal.NewFromFloat(actual)
	if c.Min != nil && v.LessThan(decimal.NewFromFloat(*c.Min)) {
		return false
	}
	if c.Max != nil && v.GreaterThan(decimal.NewFromFloat(*c.Max)) {
		return false
	}
	return true
}

// Evaluate scores inputs against criteria. Criteria without a measurement are
// left out of the score entirely. Outcomes follow catalog order, so the
// order of inputs has no effect.
func Evaluate(criteria []catalog.Criterion, inputs []Input) (Report, error) {
	known := make(map[string]catalog.Criterion, len(criteria))
	for _, c := range criteria {
		known[c.ID] = c
	}
	actual := make(map[string]float64, len(inputs))
	for i, in := range inputs {
		if _, ok := known[in.CriteriaID]; !ok {
			return Report{}, fmt.Errorf("input %d: criterion %q does not apply to this stage: %w", i, in.CriteriaID, apperr.ErrInvalidParameters)
		}
		if _, dup := actual[in.CriteriaID]; dup {
			return Report{}, fmt.Errorf("input %d: criterion %q submitted twice: %w", i, in.CriteriaID, apperr.ErrInvalidParameters)
		}
		actual[in.CriteriaID] = in.ActualValue
	}

	rep := Report{Outcomes: []Outcome{}}
	for _, c := range criteria {
		v, ok := actual[c.ID]
		if !ok {
			if c.Required {
				rep.MissingRequired = append(rep.MissingRequired, c.ID)
			}
			continue
		}
		o := Outcome{
			CriteriaID:  c.ID,
			Name:        c.Name,
			ActualValue: v,
			Min:         c.Min,
			Max:         c.Max,
			Target:      c.Target,
			Unit:        c.Unit,
			Weight:      c.Weight,
			Required:    c.Required,
			Pass:        Within(c, v),
		}
		if c.Target != nil {
			d, _ := decimal.NewFromFloat(v).Sub(decimal.NewFromFloat(*c.Target)).Float64()
			o.Deviation = &d
		}
		rep.Outcomes = append(rep.Outcomes, o)
	}
	rep.Evaluated = len(rep.Outcomes)
	rep.Score = CalculateOverallScore(rep.Outcomes)
	rep.Advisory = advisory(rep)
	return rep, nil
}

// CalculateOverallScore is Σ(pass ? 100 : 0)·w / Σw, rounded to two places.
// With all weights zero every outcome counts equally. It does not depend on
// the order of outcomes.
func CalculateOverallScore(outcomes []Outcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	sorted := append([]Outcome(nil), outcomes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CriteriaID < sorted[j].CriteriaID })

	num, den := decimal.Zero, decimal.Zero
	for _, o := range sorted {
		w := decimal.NewFromFloat(o.Weight)
		den = den.Add(w)
		if o.Pass {
			num = num.Add(hundred.Mul(w))
		}
	}
	if den.IsZero() {
		passed := 0
		for _, o := range sorted {
			if o.Pass {
				passed++
			}
		}
		num = hundred.Mul(decimal.NewFromInt(int64(passed)))
		den = decimal.NewFromInt(int64(len(sorted)))
	}
	score, _ := num.DivRound(den, 4).Round(2).Float64()
	return score
}

func advisory(rep Report) Result {
	if len(rep.Outcomes) == 0 && len(rep.MissingRequired) > 0 {
		return Fail
	}
	soft := false
	for _, o := range rep.Outcomes {
		if o.Pass {
			continue
		}
		if o.Required {
			return Fail
		}
		soft = true
	}
	if soft {
		return NeedsImprovement
	}
	return Pass
}
