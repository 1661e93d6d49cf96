package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gage/internal/domain/model"
)

// Source column names of the application_train CSV format.
const (
	colID           = "SK_ID_CURR"
	colIncome       = "AMT_INCOME_TOTAL"
	colCredit       = "AMT_CREDIT"
	colDaysBirth    = "DAYS_BIRTH"
	colFamilyStatus = "NAME_FAMILY_STATUS"
	colEducation    = "NAME_EDUCATION_TYPE"
	colHousingType  = "NAME_HOUSING_TYPE"
	colIncomeType   = "NAME_INCOME_TYPE"
	colTarget       = "TARGET"
)

// targetUnknown marks records whose source carried no default label.
const targetUnknown = -1

// LoadStats reports the outcome of one load.
type LoadStats struct {
	RecordCount  int           `json:"record_count"`
	SkippedCount int           `json:"skipped_count"`
	Duration     time.Duration `json:"-"`
	LoadedAt     time.Time     `json:"loaded_at"`
}

// columnIndex maps the columns we consume to their position in the header.
// Optional columns are -1 when absent.
type columnIndex struct {
	id, income, credit                                        int
	daysBirth, family, education, housing, incomeType, target int
}

// Load parses the CSV at path into a fresh immutable Snapshot.
//
// A missing file fails with ErrSourceNotFound. Missing required header
// columns, or a file yielding zero usable rows, fail with
// ErrMalformedSource. Individual rows whose id, income or credit cannot
// be parsed are skipped and counted, so one bad row never blocks a load.
func Load(ctx context.Context, path string) (*Snapshot, LoadStats, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, LoadStats{}, fmt.Errorf("%s: %w", path, ErrSourceNotFound)
		}
		return nil, LoadStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read header of %s: %w", path, ErrMalformedSource)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("%s: %w", path, err)
	}

	snap := &Snapshot{records: make(map[int64]model.Record)}
	skipped := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, LoadStats{}, fmt.Errorf("load %s: %w", path, err)
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, LoadStats{}, fmt.Errorf("read %s: %w", path, err)
		}

		rec, ok := parseRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		if _, dup := snap.records[rec.ID]; dup {
			skipped++
			continue
		}
		snap.records[rec.ID] = rec
		snap.ids = append(snap.ids, rec.ID)
	}

	if len(snap.ids) == 0 {
		return nil, LoadStats{}, fmt.Errorf("%s: no usable rows: %w", path, ErrMalformedSource)
	}

	if err := buildSortedColumns(ctx, snap); err != nil {
		return nil, LoadStats{}, fmt.Errorf("index %s: %w", path, err)
	}

	snap.loadedAt = time.Now()
	stats := LoadStats{
		RecordCount:  len(snap.ids),
		SkippedCount: skipped,
		Duration:     time.Since(start),
		LoadedAt:     snap.loadedAt,
	}
	return snap, stats, nil
}

func resolveColumns(header []string) (columnIndex, error) {
	cols := columnIndex{
		id: -1, income: -1, credit: -1,
		daysBirth: -1, family: -1, education: -1, housing: -1, incomeType: -1, target: -1,
	}
	for i, name := range header {
		switch name {
		case colID:
			cols.id = i
		case colIncome:
			cols.income = i
		case colCredit:
			cols.credit = i
		case colDaysBirth:
			cols.daysBirth = i
		case colFamilyStatus:
			cols.family = i
		case colEducation:
			cols.education = i
		case colHousingType:
			cols.housing = i
		case colIncomeType:
			cols.incomeType = i
		case colTarget:
			cols.target = i
		}
	}
	if cols.id < 0 || cols.income < 0 || cols.credit < 0 {
		return cols, fmt.Errorf("missing required columns: %w", ErrMalformedSource)
	}
	return cols, nil
}

// parseRow converts one CSV row into a Record. It returns false when the
// required fields cannot be parsed as their types; such rows are skipped
// by the caller, not treated as load failures.
func parseRow(row []string, cols columnIndex) (model.Record, bool) {
	id, ok := parseID(field(row, cols.id))
	if !ok {
		return model.Record{}, false
	}
	income, ok := parseAmount(field(row, cols.income), true)
	if !ok {
		return model.Record{}, false
	}
	credit, ok := parseAmount(field(row, cols.credit), false)
	if !ok {
		return model.Record{}, false
	}

	rec := model.Record{
		ID:           id,
		Income:       income,
		CreditAmount: credit,
		FamilyStatus: field(row, cols.family),
		Education:    field(row, cols.education),
		HousingType:  field(row, cols.housing),
		IncomeType:   field(row, cols.incomeType),
		Target:       targetUnknown,
	}
	if days, err := strconv.Atoi(field(row, cols.daysBirth)); err == nil {
		rec.DaysBirth = days
	}
	if t, err := strconv.Atoi(field(row, cols.target)); err == nil {
		rec.Target = t
	}
	return rec, true
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseAmount parses a non-negative monetary field. When emptyOK is set an
// empty field reads as 0, matching the dataset's missing-income convention.
func parseAmount(s string, emptyOK bool) (float64, bool) {
	if s == "" {
		return 0, emptyOK
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// buildSortedColumns builds the ascending percentile columns, one
// goroutine per column.
func buildSortedColumns(ctx context.Context, snap *Snapshot) error {
	incomes := make([]float64, 0, len(snap.ids))
	credits := make([]float64, 0, len(snap.ids))
	for _, id := range snap.ids {
		rec := snap.records[id]
		incomes = append(incomes, rec.Income)
		credits = append(credits, rec.CreditAmount)
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		sort.Float64s(incomes)
		return nil
	})
	g.Go(func() error {
		sort.Float64s(credits)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap.sortedIncome = incomes
	snap.sortedCredit = credits
	return nil
}
