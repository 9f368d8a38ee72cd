package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// FromFiles starts from the built-in catalog, applies the criteria sheet
// (.csv or .xlsx) and then the YAML overrides. Empty paths are skipped.
func FromFiles(yamlPath, sheetPath string) (*Catalog, error) {
	c := Default()
	var err error
	if sheetPath != "" {
		switch strings.ToLower(filepath.Ext(sheetPath)) {
		case ".csv":
			c, err = LoadCriteriaCSV(c, sheetPath)
		case ".xlsx", ".xlsm":
			c, err = LoadCriteriaXLSX(c, sheetPath)
		default:
			err = fmt.Errorf("catalog: %s: unsupported sheet type", sheetPath)
		}
		if err != nil {
			return nil, err
		}
	}
	if yamlPath != "" {
		if c, err = LoadYAML(c, yamlPath); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type fileFormat struct {
	Stages      map[string]stageFile `yaml:"stages"`
	WasteLimits map[string]float64   `yaml:"waste_limits"`
}

type stageFile struct {
	Criteria       []Criterion     `yaml:"criteria"`
	FailureReasons []FailureReason `yaml:"failure_reasons"`
}

// LoadYAML applies a YAML override file on top of base. Stages listed in the
// file replace the base criteria (and reasons, when given) wholesale.
func LoadYAML(base *Catalog, path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return ParseYAML(base, b)
}

func ParseYAML(base *Catalog, data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	out := base.clone()
	for name, st := range f.Stages {
		code, err := ParseStageCode(name)
		if err != nil {
			return nil, fmt.Errorf("catalog: stage %q: %w", name, err)
		}
		if st.Criteria != nil {
			out.setCriteria(code, st.Criteria)
		}
		if st.FailureReasons != nil {
			out.setReasons(code, st.FailureReasons)
		}
	}
	for name, pct := range f.WasteLimits {
		out.waste[normKey(name)] = pct
	}
	out.reindex()
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return out, nil
}

// LoadCriteriaCSV reads a criteria table; the header row decides the column
// order and a handful of header spellings are accepted.
func LoadCriteriaCSV(base *Catalog, path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("catalog: csv %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return fromRows(base, rows)
}

// LoadCriteriaXLSX reads the "Criteria" sheet, or the first sheet when no
// sheet has that name.
func LoadCriteriaXLSX(base *Catalog, path string) (*Catalog, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("catalog: %s has no sheets", path)
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if strings.EqualFold(s, "criteria") {
			sheet = s
			break
		}
	}
	rows, err := x.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("catalog: read sheet %s: %w", sheet, err)
	}
	return fromRows(base, rows)
}

func fromRows(base *Catalog, rows [][]string) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, errors.New("catalog: criteria table is empty")
	}
	hmap := map[string]int{}
	for i, h := range rows[0] {
		hmap[normKey(h)] = i
	}
	findAny := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[normKey(k)]; ok {
				return idx
			}
		}
		return -1
	}

	cStage := findAny("stage", "stage_code", "stagecode")
	cID := findAny("id", "criteria_id", "criterion_id", "code")
	cName := findAny("name", "criteria_name", "description")
	cType := findAny("type", "criteria_type", "category")
	cMin := findAny("min", "min_value", "minimum")
	cMax := findAny("max", "max_value", "maximum")
	cTarget := findAny("target", "target_value")
	cUnit := findAny("unit", "units")
	cWeight := findAny("weight")
	cReq := findAny("required", "is_required", "mandatory")

	if cStage == -1 || cID == -1 || cType == -1 || cWeight == -1 {
		return nil, fmt.Errorf("catalog: criteria table missing required columns, found %v; need at least stage, id, type, weight", rows[0])
	}

	grouped := map[StageCode][]Criterion{}
	var order []StageCode
	for n, rec := range rows[1:] {
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		if get(cStage) == "" && get(cID) == "" {
			continue
		}
		line := n + 2
		code, err := ParseStageCode(get(cStage))
		if err != nil {
			return nil, fmt.Errorf("catalog: row %d: %w", line, err)
		}
		typ, err := ParseCriterionType(get(cType))
		if err != nil {
			return nil, fmt.Errorf("catalog: row %d: %w", line, err)
		}
		w, err := strconv.ParseFloat(get(cWeight), 64)
		if err != nil {
			return nil, fmt.Errorf("catalog: row %d: bad weight %q", line, get(cWeight))
		}
		crit := Criterion{
			ID:     get(cID),
			Name:   get(cName),
			Type:   typ,
			Unit:   get(cUnit),
			Weight: w,
		}
		for _, b := range []struct {
			col int
			dst **float64
		}{{cMin, &crit.Min}, {cMax, &crit.Max}, {cTarget, &crit.Target}} {
			raw := get(b.col)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("catalog: row %d: bad number %q", line, raw)
			}
			*b.dst = &v
		}
		switch strings.ToLower(get(cReq)) {
		case "1", "true", "yes", "y", "x":
			crit.Required = true
		}
		if _, ok := grouped[code]; !ok {
			order = append(order, code)
		}
		grouped[code] = append(grouped[code], crit)
	}

	out := base.clone()
	for _, code := range order {
		out.setCriteria(code, grouped[code])
	}
	out.reindex()
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return out, nil
}
