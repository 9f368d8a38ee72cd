// Package failurecodec reads and writes the delimited failure payload that
// older evaluations carry inside their comment text:
//
//	FAILED_STAGE_ID:<id>|FAILED_STAGE_NAME:<name>|DETAILS:<text>|RECOMMENDATIONS:<text>
//
// The layout must stay byte-for-byte stable because stored comments are
// parsed back with the same rules.
package failurecodec

import (
	"strconv"
	"strings"
)

const (
	tagStageID   = "FAILED_STAGE_ID:"
	tagStageName = "|FAILED_STAGE_NAME:"
	tagDetails   = "|DETAILS:"
	tagRecs      = "|RECOMMENDATIONS:"
)

type Info struct {
	StageID         uint   `json:"failed_stage_id"`
	StageName       string `json:"failed_stage_name"`
	Details         string `json:"details"`
	Recommendations string `json:"recommendations"`
}

func Encode(in Info) string {
	var b strings.Builder
	b.WriteString(tagStageID)
	b.WriteString(strconv.FormatUint(uint64(in.StageID), 10))
	b.WriteString(tagStageName)
	b.WriteString(in.StageName)
	b.WriteString(tagDetails)
	b.WriteString(in.Details)
	b.WriteString(tagRecs)
	b.WriteString(in.Recommendations)
	return b.String()
}

// IsFailureRecord is the cheap check stored comments have always been
// filtered with.
func IsFailureRecord(text string) bool {
	return strings.Contains(text, tagStageID)
}

// Decode never fails loudly: anything that does not parse is reported as
// "not a failure record".
func Decode(text string) (Info, bool) {
	start := strings.Index(text, tagStageID)
	if start < 0 {
		return Info{}, false
	}
	rest := text[start+len(tagStageID):]

	iName := strings.Index(rest, tagStageName)
	if iName < 0 {
		return Info{}, false
	}
	id, err := strconv.ParseUint(strings.TrimSpace(rest[:iName]), 10, 64)
	if err != nil {
		return Info{}, false
	}
	rest = rest[iName+len(tagStageName):]

	iDetails := strings.Index(rest, tagDetails)
	if iDetails < 0 {
		return Info{}, false
	}
	name := rest[:iDetails]
	rest = rest[iDetails+len(tagDetails):]

	// details may legitimately contain '|', so the last marker wins
	iRecs := strings.LastIndex(rest, tagRecs)
	if iRecs < 0 {
		return Info{}, false
	}
	return Info{
		StageID:         uint(id),
		StageName:       name,
		Details:         rest[:iRecs],
		Recommendations: rest[iRecs+len(tagRecs):],
	}, true
}
