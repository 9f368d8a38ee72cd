package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type CriterionType string

const (
	Physical CriterionType = "Physical"
	Chemical CriterionType = "Chemical"
	Visual   CriterionType = "Visual"
	Quality  CriterionType = "Quality"
	Process  CriterionType = "Process"
)

func ParseCriterionType(s string) (CriterionType, error) {
	for _, t := range []CriterionType{Physical, Chemical, Visual, Quality, Process} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown criterion type %q", s)
}

// Criterion is one measurable threshold for a stage. Nil bounds are open.
type Criterion struct {
	ID       string        `json:"id" yaml:"id"`
	Stage    StageCode     `json:"stage" yaml:"-"`
	Name     string        `json:"name" yaml:"name"`
	Type     CriterionType `json:"type" yaml:"type"`
	Min      *float64      `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64      `json:"max,omitempty" yaml:"max,omitempty"`
	Target   *float64      `json:"target,omitempty" yaml:"target,omitempty"`
	Unit     string        `json:"unit" yaml:"unit"`
	Weight   float64       `json:"weight" yaml:"weight"`
	Required bool          `json:"required" yaml:"required"`
}

type FailureReason struct {
	ID       string    `json:"id" yaml:"id"`
	Code     string    `json:"code" yaml:"code"`
	Name     string    `json:"name" yaml:"name"`
	Category string    `json:"category" yaml:"category"`
	Severity int       `json:"severity" yaml:"severity"`
	Stage    StageCode `json:"stage" yaml:"-"`
}

// DefaultMaxWastePercent applies to stages missing from the waste table.
const DefaultMaxWastePercent = 15.0

// Catalog is built once at startup and only read afterwards, so it is safe
// to share between requests.
type Catalog struct {
	criteria map[StageCode][]Criterion
	reasons  map[StageCode][]FailureReason
	waste    map[string]float64
	byID     map[string]Criterion
}

func newCatalog() *Catalog {
	return &Catalog{
		criteria: map[StageCode][]Criterion{},
		reasons:  map[StageCode][]FailureReason{},
		waste:    map[string]float64{},
		byID:     map[string]Criterion{},
	}
}

func (c *Catalog) clone() *Catalog {
	out := newCatalog()
	for k, v := range c.criteria {
		out.criteria[k] = append([]Criterion(nil), v...)
	}
	for k, v := range c.reasons {
		out.reasons[k] = append([]FailureReason(nil), v...)
	}
	for k, v := range c.waste {
		out.waste[k] = v
	}
	out.reindex()
	return out
}

func (c *Catalog) reindex() {
	c.byID = map[string]Criterion{}
	for _, list := range c.criteria {
		for _, cr := range list {
			c.byID[cr.ID] = cr
		}
	}
}

func (c *Catalog) setCriteria(code StageCode, list []Criterion) {
	out := make([]Criterion, len(list))
	for i, cr := range list {
		cr.Stage = code
		if t, err := ParseCriterionType(string(cr.Type)); err == nil {
			cr.Type = t
		}
		out[i] = cr
	}
	c.criteria[code] = out
}

func (c *Catalog) setReasons(code StageCode, list []FailureReason) {
	out := make([]FailureReason, len(list))
	for i, r := range list {
		r.Stage = code
		out[i] = r
	}
	c.reasons[code] = out
}

// Criteria returns a copy of the criteria for code. An unknown code yields
// nil; callers are expected to go through ParseStageCode first.
func (c *Catalog) Criteria(code StageCode) []Criterion {
	return append([]Criterion(nil), c.criteria[code]...)
}

func (c *Catalog) Criterion(id string) (Criterion, bool) {
	cr, ok := c.byID[id]
	return cr, ok
}

func (c *Catalog) FailureReasons(code StageCode) []FailureReason {
	return append([]FailureReason(nil), c.reasons[code]...)
}

// MostSevere returns up to n failure reasons for code, highest severity first.
func (c *Catalog) MostSevere(code StageCode, n int) []FailureReason {
	list := c.FailureReasons(code)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Severity > list[j].Severity })
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}

// MaxWastePercent looks the stage up by its display name first, then by the
// stage code it resolves to. Unrecognised names get the default.
func (c *Catalog) MaxWastePercent(stageName string) float64 {
	k := normKey(stageName)
	if v, ok := c.waste[k]; ok {
		return v
	}
	if code, err := ParseStageCode(stageName); err == nil {
		if v, ok := c.waste[string(code)]; ok {
			return v
		}
	}
	return DefaultMaxWastePercent
}

// Stages returns the stage codes that carry criteria, in processing order.
func (c *Catalog) Stages() []StageCode {
	var out []StageCode
	for _, s := range AllStages {
		if _, ok := c.criteria[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) Validate() error {
	var errs []error
	seen := map[string]StageCode{}
	for code, list := range c.criteria {
		if !code.Valid() {
			errs = append(errs, fmt.Errorf("stage %q is not a known stage code", code))
		}
		for _, cr := range list {
			if cr.ID == "" {
				errs = append(errs, fmt.Errorf("%s: criterion without id", code))
				continue
			}
			if prev, dup := seen[cr.ID]; dup {
				errs = append(errs, fmt.Errorf("criterion %s defined for both %s and %s", cr.ID, prev, code))
			}
			seen[cr.ID] = code
			if cr.Weight < 0 || cr.Weight > 1 {
				errs = append(errs, fmt.Errorf("criterion %s: weight %.3f outside 0..1", cr.ID, cr.Weight))
			}
			if cr.Min != nil && cr.Max != nil && *cr.Min > *cr.Max {
				errs = append(errs, fmt.Errorf("criterion %s: min %.3f > max %.3f", cr.ID, *cr.Min, *cr.Max))
			}
			if _, err := ParseCriterionType(string(cr.Type)); err != nil {
				errs = append(errs, fmt.Errorf("criterion %s: %w", cr.ID, err))
			}
		}
	}
	for code, list := range c.reasons {
		for _, r := range list {
			if r.Severity < 1 || r.Severity > 5 {
				errs = append(errs, fmt.Errorf("%s: failure reason %s severity %d outside 1..5", code, r.Code, r.Severity))
			}
		}
	}
	for name, pct := range c.waste {
		if pct < 0 || pct > 100 {
			errs = append(errs, fmt.Errorf("waste limit %s: %.2f outside 0..100", name, pct))
		}
	}
	return errors.Join(errs...)
}
