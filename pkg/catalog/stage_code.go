package catalog

import (
	"fmt"
	"strings"

	"beanline/pkg/apperr"
)

type StageCode string

const (
	StageHarvesting   StageCode = "harvesting"
	StageSorting      StageCode = "sorting"
	StagePulping      StageCode = "pulping"
	StageFermentation StageCode = "fermentation"
	StageWashing      StageCode = "washing"
	StageDrying       StageCode = "drying"
	StageHulling      StageCode = "hulling"
	StageGrading      StageCode = "grading"
	StagePackaging    StageCode = "packaging"
)

// AllStages lists the stage codes in their usual processing order.
var AllStages = []StageCode{
	StageHarvesting,
	StageSorting,
	StagePulping,
	StageFermentation,
	StageWashing,
	StageDrying,
	StageHulling,
	StageGrading,
	StagePackaging,
}

var stageAliases = map[string]StageCode{
	"harvest":    StageHarvesting,
	"picking":    StageHarvesting,
	"sort":       StageSorting,
	"floating":   StageSorting,
	"pulp":       StagePulping,
	"depulping":  StagePulping,
	"ferment":    StageFermentation,
	"fermenting": StageFermentation,
	"wash":       StageWashing,
	"dry":        StageDrying,
	"sundrying":  StageDrying,
	"hull":       StageHulling,
	"milling":    StageHulling,
	"dryhulling": StageHulling,
	"grade":      StageGrading,
	"cupping":    StageGrading,
	"pack":       StagePackaging,
	"bagging":    StagePackaging,
}

func normKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// ParseStageCode resolves a stage code or one of its aliases. Unknown input
// is an error rather than an empty criteria set.
func ParseStageCode(s string) (StageCode, error) {
	k := normKey(s)
	for _, c := range AllStages {
		if string(c) == k {
			return c, nil
		}
	}
	if c, ok := stageAliases[k]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%q: %w", s, apperr.ErrUnknownStageCode)
}

// Valid reports whether c is one of the canonical codes.
func (c StageCode) Valid() bool {
	for _, s := range AllStages {
		if s == c {
			return true
		}
	}
	return false
}
