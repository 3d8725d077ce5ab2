package rules

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/domain"
)

// Repository is the immutable in-memory index over a rule source:
// chapter -> table -> cell, the PCT combination table and the QoL
// conversion table. It is built once at startup and never mutated, so it
// is safe for unsynchronized concurrent reads.
type Repository struct {
	ruleset      *domain.RuleSet
	chapters     map[int]*domain.Chapter
	tables       map[tableKey]*domain.RuleTable
	chapterOf    map[tableKey]*domain.Chapter
	cells        map[cellKey]*domain.RatingCell
	combination  map[int]*domain.CombinationRow
	levelsByID   map[domain.QoLLevel]*domain.QoLLevelSpec
	chapterOrder []int
}

type tableKey struct {
	chapter int
	table   int
}

type cellKey struct {
	chapter int
	table   int
	rating  int
}

// Stats summarizes the indexed rule source, logged once at startup.
type Stats struct {
	Chapters        int `json:"chapters"`
	Tables          int `json:"tables"`
	Cells           int `json:"cells"`
	CombinationRows int `json:"combination_rows"`
	QoLBands        int `json:"qol_bands"`
}

// NewRepository validates a parsed rule source and builds the index. Any
// defect fails the whole load rather than serving partial data.
func NewRepository(rs *domain.RuleSet, logger *logrus.Logger) (*Repository, error) {
	if err := validate(rs); err != nil {
		return nil, fmt.Errorf("rule source validation failed: %w", err)
	}

	r := &Repository{
		ruleset:     rs,
		chapters:    make(map[int]*domain.Chapter),
		tables:      make(map[tableKey]*domain.RuleTable),
		chapterOf:   make(map[tableKey]*domain.Chapter),
		cells:       make(map[cellKey]*domain.RatingCell),
		combination: make(map[int]*domain.CombinationRow),
		levelsByID:  make(map[domain.QoLLevel]*domain.QoLLevelSpec),
	}

	for ci := range rs.Chapters {
		ch := &rs.Chapters[ci]
		r.chapters[ch.Chapter] = ch
		r.chapterOrder = append(r.chapterOrder, ch.Chapter)
		for ti := range ch.Tables {
			tbl := &ch.Tables[ti]
			tk := tableKey{chapter: ch.Chapter, table: tbl.Table}
			r.tables[tk] = tbl
			r.chapterOf[tk] = ch
			for pi := range tbl.Cells {
				cell := &tbl.Cells[pi]
				r.cells[cellKey{chapter: ch.Chapter, table: tbl.Table, rating: cell.Rating}] = cell
			}
		}
	}

	for ri := range rs.Combination {
		row := &rs.Combination[ri]
		r.combination[row.Base] = row
	}

	for li := range rs.QoL.Levels {
		spec := &rs.QoL.Levels[li]
		r.levelsByID[spec.Level] = spec
	}

	stats := r.Stats()
	logger.WithFields(logrus.Fields{
		"version":          rs.Version,
		"chapters":         stats.Chapters,
		"tables":           stats.Tables,
		"cells":            stats.Cells,
		"combination_rows": stats.CombinationRows,
		"qol_bands":        stats.QoLBands,
	}).Info("Rule table repository initialized")

	return r, nil
}

// Version returns the rule source version string
func (r *Repository) Version() string {
	return r.ruleset.Version
}

// Title returns the official rule source title
func (r *Repository) Title() string {
	return r.ruleset.Title
}

// Chapters returns all chapters in source order
func (r *Repository) Chapters() []domain.Chapter {
	out := make([]domain.Chapter, 0, len(r.chapterOrder))
	for _, id := range r.chapterOrder {
		out = append(out, *r.chapters[id])
	}
	return out
}

// Chapter returns one chapter by number
func (r *Repository) Chapter(chapter int) (*domain.Chapter, error) {
	ch, ok := r.chapters[chapter]
	if !ok {
		return nil, domain.NewUnknownTableError(chapter, 0)
	}
	return ch, nil
}

// Table returns the rule table for a chapter/table pair
func (r *Repository) Table(chapter, table int) (*domain.RuleTable, error) {
	tbl, ok := r.tables[tableKey{chapter: chapter, table: table}]
	if !ok {
		return nil, domain.NewUnknownTableError(chapter, table)
	}
	return tbl, nil
}

// ChapterTitle returns the official chapter title for a table reference
func (r *Repository) ChapterTitle(chapter, table int) (string, error) {
	ch, ok := r.chapterOf[tableKey{chapter: chapter, table: table}]
	if !ok {
		return "", domain.NewUnknownTableError(chapter, table)
	}
	return ch.Title, nil
}

// Cell returns the rating cell with the given value. The table must exist
// and the value must be a defined cell; ratings are never interpolated.
func (r *Repository) Cell(chapter, table, rating int) (*domain.RatingCell, error) {
	if _, ok := r.tables[tableKey{chapter: chapter, table: table}]; !ok {
		return nil, domain.NewUnknownTableError(chapter, table)
	}
	cell, ok := r.cells[cellKey{chapter: chapter, table: table, rating: rating}]
	if !ok {
		return nil, domain.NewInvalidRatingError(chapter, table, rating)
	}
	return cell, nil
}

// Combine looks up the PCT-adjusted MI for a base value and fraction. The
// adjusted value is a defined combination cell, not a product.
func (r *Repository) Combine(base int, fraction domain.PCTFraction) (int, error) {
	row, ok := r.combination[base]
	if !ok {
		return 0, &domain.InvalidRatingError{
			Rating: base,
			Detail: fmt.Sprintf("base MI %d has no defined combination row", base),
		}
	}
	switch fraction {
	case domain.QUARTER:
		return row.Quarter, nil
	case domain.HALF:
		return row.Half, nil
	case domain.THREE_QUARTERS:
		return row.ThreeQuarters, nil
	default:
		return 0, &domain.InvalidRatingError{
			Rating: base,
			Detail: fmt.Sprintf("fraction %q is not a defined combination column", string(fraction)),
		}
	}
}

// QoLAddend looks up the QoL addend for an effective MI and level. The
// band is located first; the addend is fixed per (band, level).
func (r *Repository) QoLAddend(effectiveMI int, level domain.QoLLevel) (*domain.QoLMatch, error) {
	spec, ok := r.levelsByID[level]
	if !ok {
		return nil, &domain.InvalidRatingError{
			Rating: int(level),
			Detail: fmt.Sprintf("QoL level %d is not defined by the conversion table", int(level)),
		}
	}
	for _, band := range r.ruleset.QoL.Bands {
		if band.Contains(effectiveMI) {
			return &domain.QoLMatch{
				Band:     band,
				Level:    level,
				Label:    spec.Label,
				Criteria: spec.Criteria,
				Addend:   band.Addends[level],
			}, nil
		}
	}
	return nil, domain.NewOutOfBandError("", effectiveMI)
}

// Stats returns counts over the indexed source
func (r *Repository) Stats() Stats {
	cellCount := 0
	for _, ch := range r.ruleset.Chapters {
		for _, tbl := range ch.Tables {
			cellCount += len(tbl.Cells)
		}
	}
	return Stats{
		Chapters:        len(r.ruleset.Chapters),
		Tables:          len(r.tables),
		Cells:           cellCount,
		CombinationRows: len(r.combination),
		QoLBands:        len(r.ruleset.QoL.Bands),
	}
}

// validate rejects malformed or incomplete rule sources in full before
// any lookup is served.
func validate(rs *domain.RuleSet) error {
	if rs.Version == "" {
		return fmt.Errorf("rule source has no version")
	}
	if rs.Title == "" {
		return fmt.Errorf("rule source has no title")
	}
	if len(rs.Chapters) == 0 {
		return fmt.Errorf("rule source defines no chapters")
	}

	seenChapters := make(map[int]bool)
	for _, ch := range rs.Chapters {
		if ch.Chapter <= 0 {
			return fmt.Errorf("chapter number %d is not positive", ch.Chapter)
		}
		if seenChapters[ch.Chapter] {
			return fmt.Errorf("duplicate chapter %d", ch.Chapter)
		}
		seenChapters[ch.Chapter] = true
		if ch.Title == "" {
			return fmt.Errorf("chapter %d has no title", ch.Chapter)
		}
		if len(ch.Tables) == 0 {
			return fmt.Errorf("chapter %d defines no tables", ch.Chapter)
		}

		seenTables := make(map[int]bool)
		for _, tbl := range ch.Tables {
			if seenTables[tbl.Table] {
				return fmt.Errorf("duplicate table %d.%d", ch.Chapter, tbl.Table)
			}
			seenTables[tbl.Table] = true
			if tbl.Title == "" {
				return fmt.Errorf("table %d.%d has no title", ch.Chapter, tbl.Table)
			}
			if len(tbl.Cells) == 0 {
				return fmt.Errorf("table %d.%d defines no rating cells", ch.Chapter, tbl.Table)
			}

			seenRatings := make(map[int]bool)
			for _, cell := range tbl.Cells {
				if cell.Rating < 0 || cell.Rating > 100 {
					return fmt.Errorf("table %d.%d cell rating %d is outside [0, 100]", ch.Chapter, tbl.Table, cell.Rating)
				}
				if seenRatings[cell.Rating] {
					return fmt.Errorf("table %d.%d has duplicate cell rating %d", ch.Chapter, tbl.Table, cell.Rating)
				}
				seenRatings[cell.Rating] = true
				if cell.Descriptor == "" {
					return fmt.Errorf("table %d.%d cell %d has no descriptor text", ch.Chapter, tbl.Table, cell.Rating)
				}
			}
		}
	}

	if len(rs.Combination) == 0 {
		return fmt.Errorf("rule source defines no combination table")
	}
	seenBases := make(map[int]bool)
	for _, row := range rs.Combination {
		if seenBases[row.Base] {
			return fmt.Errorf("combination table has duplicate base %d", row.Base)
		}
		seenBases[row.Base] = true
		for name, v := range map[string]int{"quarter": row.Quarter, "half": row.Half, "three_quarters": row.ThreeQuarters} {
			if v < 0 || v > row.Base {
				return fmt.Errorf("combination row %d column %s value %d is outside [0, base]", row.Base, name, v)
			}
		}
	}

	if len(rs.QoL.Levels) != 3 {
		return fmt.Errorf("QoL conversion table must define exactly three levels, got %d", len(rs.QoL.Levels))
	}
	for i, spec := range rs.QoL.Levels {
		if spec.Level != domain.QoLLevel(i+1) {
			return fmt.Errorf("QoL levels must be ordered 1..3, position %d has level %d", i, int(spec.Level))
		}
		if spec.Label == "" {
			return fmt.Errorf("QoL level %d has no label", int(spec.Level))
		}
	}

	if len(rs.QoL.Bands) == 0 {
		return fmt.Errorf("QoL conversion table defines no bands")
	}
	prevMax := -1
	for _, band := range rs.QoL.Bands {
		if band.Min != prevMax+1 {
			return fmt.Errorf("QoL bands must be contiguous and ordered; band starting at %d follows max %d", band.Min, prevMax)
		}
		if band.Max < band.Min {
			return fmt.Errorf("QoL band [%d, %d] is inverted", band.Min, band.Max)
		}
		prevMax = band.Max
		for _, spec := range rs.QoL.Levels {
			addend, ok := band.Addends[spec.Level]
			if !ok {
				return fmt.Errorf("QoL band [%d, %d] has no addend for level %d", band.Min, band.Max, int(spec.Level))
			}
			if addend < 0 {
				return fmt.Errorf("QoL band [%d, %d] level %d addend %d is negative", band.Min, band.Max, int(spec.Level), addend)
			}
		}
	}
	if prevMax < 100 {
		return fmt.Errorf("QoL bands must cover ratings up to 100, last band ends at %d", prevMax)
	}

	return nil
}
