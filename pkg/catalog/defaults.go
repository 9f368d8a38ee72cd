package catalog

func num(v float64) *float64 { return &v }

var defaultCriteria = map[StageCode][]Criterion{
	StageHarvesting: {
		{ID: "HAR_RIPENESS", Name: "Ripe cherry ratio", Type: Quality, Min: num(85), Max: num(100), Target: num(95), Unit: "%", Weight: 0.5, Required: true},
		{ID: "HAR_FOREIGN_MATTER", Name: "Foreign matter", Type: Physical, Min: num(0), Max: num(2), Target: num(0), Unit: "%", Weight: 0.3, Required: true},
		{ID: "HAR_BRIX", Name: "Cherry sugar content", Type: Chemical, Min: num(18), Max: num(26), Target: num(22), Unit: "°Bx", Weight: 0.2},
	},
	StageSorting: {
		{ID: "SRT_DEFECTIVE", Name: "Defective cherry ratio", Type: Visual, Min: num(0), Max: num(5), Target: num(1), Unit: "%", Weight: 0.5, Required: true},
		{ID: "SRT_FLOATERS", Name: "Floater ratio", Type: Physical, Min: num(0), Max: num(3), Target: num(0.5), Unit: "%", Weight: 0.3, Required: true},
		{ID: "SRT_UNIFORMITY", Name: "Colour uniformity", Type: Visual, Min: num(80), Max: num(100), Target: num(95), Unit: "%", Weight: 0.2},
	},
	StagePulping: {
		{ID: "PLP_SKIN_RESIDUE", Name: "Skin residue", Type: Physical, Min: num(0), Max: num(3), Target: num(1), Unit: "%", Weight: 0.4, Required: true},
		{ID: "PLP_NIPPED", Name: "Nipped beans", Type: Physical, Min: num(0), Max: num(2), Target: num(0.5), Unit: "%", Weight: 0.4, Required: true},
		{ID: "PLP_WATER_USE", Name: "Water use", Type: Process, Min: num(0), Max: num(10), Target: num(5), Unit: "L/kg", Weight: 0.2},
	},
	StageFermentation: {
		{ID: "FER_PH", Name: "Mucilage pH", Type: Chemical, Min: num(4.0), Max: num(4.8), Target: num(4.4), Unit: "pH", Weight: 0.4, Required: true},
		{ID: "FER_DURATION", Name: "Fermentation time", Type: Process, Min: num(12), Max: num(48), Target: num(36), Unit: "h", Weight: 0.3, Required: true},
		{ID: "FER_TEMPERATURE", Name: "Tank temperature", Type: Physical, Min: num(18), Max: num(28), Target: num(22), Unit: "°C", Weight: 0.3},
	},
	StageWashing: {
		{ID: "WSH_MUCILAGE", Name: "Residual mucilage", Type: Visual, Min: num(0), Max: num(2), Target: num(0), Unit: "%", Weight: 0.6, Required: true},
		{ID: "WSH_WATER_USE", Name: "Water use", Type: Process, Min: num(0), Max: num(8), Target: num(4), Unit: "L/kg", Weight: 0.4},
	},
	StageDrying: {
		{ID: "DRY_MOISTURE", Name: "Moisture content", Type: Physical, Min: num(10), Max: num(12), Target: num(11), Unit: "%", Weight: 0.4, Required: true},
		{ID: "DRY_WATER_ACTIVITY", Name: "Water activity", Type: Chemical, Min: num(0.45), Max: num(0.65), Target: num(0.6), Unit: "aw", Weight: 0.3, Required: true},
		{ID: "DRY_DURATION", Name: "Drying duration", Type: Process, Min: num(7), Max: num(21), Target: num(14), Unit: "days", Weight: 0.3},
	},
	StageHulling: {
		{ID: "HUL_BROKEN", Name: "Broken beans", Type: Physical, Min: num(0), Max: num(3), Target: num(1), Unit: "%", Weight: 0.5, Required: true},
		{ID: "HUL_PARCHMENT", Name: "Parchment residue", Type: Visual, Min: num(0), Max: num(1), Target: num(0), Unit: "%", Weight: 0.3, Required: true},
		{ID: "HUL_YIELD", Name: "Hulling yield", Type: Process, Min: num(75), Max: num(85), Target: num(80), Unit: "%", Weight: 0.2},
	},
	StageGrading: {
		{ID: "GRD_SCREEN_16", Name: "Screen 16+ ratio", Type: Physical, Min: num(80), Max: num(100), Target: num(90), Unit: "%", Weight: 0.3, Required: true},
		{ID: "GRD_DEFECTS", Name: "Defects per 300 g", Type: Quality, Min: num(0), Max: num(8), Target: num(3), Unit: "count", Weight: 0.4, Required: true},
		{ID: "GRD_CUP_SCORE", Name: "Cupping score", Type: Quality, Min: num(80), Max: num(100), Target: num(85), Unit: "points", Weight: 0.3},
	},
	StagePackaging: {
		{ID: "PKG_MOISTURE", Name: "Moisture at bagging", Type: Physical, Min: num(9), Max: num(12), Target: num(11), Unit: "%", Weight: 0.5, Required: true},
		{ID: "PKG_WEIGHT_DEVIATION", Name: "Bag weight deviation", Type: Process, Min: num(0), Max: num(0.5), Target: num(0), Unit: "%", Weight: 0.3, Required: true},
		{ID: "PKG_LABELLING", Name: "Label check", Type: Process, Unit: "", Weight: 0.2},
	},
}

var defaultReasons = map[StageCode][]FailureReason{
	StageHarvesting: {
		{ID: "FR-HAR-01", Code: "UNDERRIPE", Name: "Too many unripe cherries", Category: "Ripeness", Severity: 4},
		{ID: "FR-HAR-02", Code: "OVERRIPE", Name: "Overripe or dried cherries", Category: "Ripeness", Severity: 3},
		{ID: "FR-HAR-03", Code: "DEBRIS", Name: "Leaves, twigs or stones in lot", Category: "Contamination", Severity: 2},
	},
	StageSorting: {
		{ID: "FR-SRT-01", Code: "DEFECTS_LEFT", Name: "Defective cherries not removed", Category: "Sorting", Severity: 3},
		{ID: "FR-SRT-02", Code: "FLOATERS_LEFT", Name: "Floaters mixed into lot", Category: "Sorting", Severity: 3},
	},
	StagePulping: {
		{ID: "FR-PLP-01", Code: "PULPER_GAP", Name: "Pulper gap out of adjustment", Category: "Equipment", Severity: 4},
		{ID: "FR-PLP-02", Code: "SKIN_LEFT", Name: "Skin left on parchment", Category: "Process", Severity: 2},
	},
	StageFermentation: {
		{ID: "FR-FER-01", Code: "OVER_FERMENTED", Name: "Over-fermentation", Category: "Process", Severity: 5},
		{ID: "FR-FER-02", Code: "UNDER_FERMENTED", Name: "Incomplete mucilage breakdown", Category: "Process", Severity: 3},
		{ID: "FR-FER-03", Code: "TANK_HYGIENE", Name: "Contaminated tank", Category: "Hygiene", Severity: 4},
	},
	StageWashing: {
		{ID: "FR-WSH-01", Code: "MUCILAGE_LEFT", Name: "Mucilage residue after washing", Category: "Process", Severity: 3},
		{ID: "FR-WSH-02", Code: "DIRTY_WATER", Name: "Recycled water too dirty", Category: "Hygiene", Severity: 2},
	},
	StageDrying: {
		{ID: "FR-DRY-01", Code: "TOO_WET", Name: "Moisture above safe storage level", Category: "Moisture", Severity: 5},
		{ID: "FR-DRY-02", Code: "OVER_DRIED", Name: "Beans over-dried and brittle", Category: "Moisture", Severity: 3},
		{ID: "FR-DRY-03", Code: "REWETTED", Name: "Rain exposure during drying", Category: "Weather", Severity: 4},
		{ID: "FR-DRY-04", Code: "MOULD", Name: "Mould spots", Category: "Contamination", Severity: 5},
	},
	StageHulling: {
		{ID: "FR-HUL-01", Code: "BROKEN", Name: "Excess broken beans", Category: "Equipment", Severity: 3},
		{ID: "FR-HUL-02", Code: "PARCHMENT_LEFT", Name: "Parchment not fully removed", Category: "Equipment", Severity: 2},
	},
	StageGrading: {
		{ID: "FR-GRD-01", Code: "SCREEN_MIX", Name: "Screen sizes mixed", Category: "Grading", Severity: 2},
		{ID: "FR-GRD-02", Code: "PRIMARY_DEFECTS", Name: "Primary defects above grade limit", Category: "Quality", Severity: 4},
		{ID: "FR-GRD-03", Code: "CUP_TAINT", Name: "Taint found on the cupping table", Category: "Quality", Severity: 5},
	},
	StagePackaging: {
		{ID: "FR-PKG-01", Code: "WRONG_WEIGHT", Name: "Bag weight out of tolerance", Category: "Packaging", Severity: 2},
		{ID: "FR-PKG-02", Code: "DAMP_BAGS", Name: "Bags stored damp", Category: "Moisture", Severity: 4},
	},
}

// Highest acceptable waste as a share of the stage's output quantity, in
// percent, keyed by stage name.
var defaultWasteLimits = map[string]float64{
	"harvesting":   5,
	"sorting":      10,
	"pulping":      45,
	"fermentation": 5,
	"washing":      8,
	"drying":       10,
	"hulling":      20,
	"grading":      12,
	"packaging":    2,
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c := newCatalog()
	for code, list := range defaultCriteria {
		c.setCriteria(code, list)
	}
	for code, list := range defaultReasons {
		c.setReasons(code, list)
	}
	for name, pct := range defaultWasteLimits {
		c.waste[name] = pct
	}
	c.reindex()
	return c
}
