package domain

// Rule Source Models
//
// A RuleSet is the versioned, immutable structured source the repository
// is built from: chapters of rating tables, the PCT combination table and
// the QoL band/level conversion table. Descriptor text is stored verbatim
// and must be reproducible byte-for-byte in audit output.

// RatingCell is a single threshold entry of a rating table.
type RatingCell struct {
	Rating     int    `json:"rating"`
	Descriptor string `json:"descriptor"`
}

// RuleTable is an ordered list of rating cells under one chapter.
type RuleTable struct {
	Table int          `json:"table"`
	Title string       `json:"title"`
	Cells []RatingCell `json:"cells"`
}

// Chapter groups the rating tables of one regulatory chapter.
type Chapter struct {
	Chapter int         `json:"chapter"`
	Title   string      `json:"title"`
	Tables  []RuleTable `json:"tables"`
}

// CombinationRow defines the adjusted MI for one base MI value at each of
// the three permitted contribution fractions. Values are defined cells,
// not arithmetic products.
type CombinationRow struct {
	Base          int `json:"base"`
	Quarter       int `json:"quarter"`
	Half          int `json:"half"`
	ThreeQuarters int `json:"three_quarters"`
}

// QoLLevelSpec carries the label and criteria text for one QoL level.
type QoLLevelSpec struct {
	Level    QoLLevel `json:"level"`
	Label    string   `json:"label"`
	Criteria []string `json:"criteria"`
}

// QoLBand is an inclusive MI range with one addend per QoL level. Bands
// are ordered, contiguous and non-overlapping.
type QoLBand struct {
	Min     int              `json:"min"`
	Max     int              `json:"max"`
	Addends map[QoLLevel]int `json:"addends"`
}

// Contains reports whether the band covers the given MI value
func (b QoLBand) Contains(mi int) bool {
	return mi >= b.Min && mi <= b.Max
}

// QoLTable is the fixed (band, level) -> addend conversion table.
type QoLTable struct {
	Levels []QoLLevelSpec `json:"levels"`
	Bands  []QoLBand      `json:"bands"`
}

// RuleSet is the complete versioned rule source.
type RuleSet struct {
	Version     string           `json:"version"`
	Title       string           `json:"title"`
	Chapters    []Chapter        `json:"chapters"`
	Combination []CombinationRow `json:"combination"`
	QoL         QoLTable         `json:"qol"`
}

// QoLMatch is the outcome of one QoL conversion lookup.
type QoLMatch struct {
	Band     QoLBand  `json:"band"`
	Level    QoLLevel `json:"level"`
	Label    string   `json:"label"`
	Criteria []string `json:"criteria"`
	Addend   int      `json:"addend"`
}
