package scorecheck

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// Synthetic data value ranges, loosely shaped like the real dataset.
const (
	firstClientID   = 100_002
	maxIncome       = 500_000.0
	maxCredit       = 900_000.0
	zeroIncomeShare = 0.02
	minAgeDays      = 21 * 365
	maxAgeDays      = 68 * 365
)

var (
	familyStatuses = []string{"Married", "Single / not married", "Civil marriage", "Widow", "Separated"}
	educations     = []string{"Secondary / secondary special", "Higher education", "Incomplete higher", "Lower secondary"}
	housingTypes   = []string{"House / apartment", "Rented apartment", "With parents", "Municipal apartment"}
	incomeTypes    = []string{"Working", "Commercial associate", "Pensioner", "State servant"}
)

// GeneratedRow is the generator's record of what it wrote, used later to
// recompute expected scores locally.
type GeneratedRow struct {
	ID     int64
	Income float64
	Credit float64
}

// Generate writes a synthetic application_train CSV to cfg.DatasetPath
// and returns the usable rows it contains. cfg.BadRows rows with a
// non-numeric income are interleaved to exercise skip accounting. The
// run is tagged with a uuid so concurrent runs are distinguishable in
// server logs.
func Generate(cfg Config) (string, []GeneratedRow, error) {
	runID := uuid.NewString()
	rng := rand.New(rand.NewSource(cfg.Seed))

	f, err := os.Create(cfg.DatasetPath)
	if err != nil {
		return runID, nil, fmt.Errorf("create dataset %s: %w", cfg.DatasetPath, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := []string{
		"SK_ID_CURR", "TARGET", "AMT_INCOME_TOTAL", "AMT_CREDIT", "DAYS_BIRTH",
		"NAME_FAMILY_STATUS", "NAME_EDUCATION_TYPE", "NAME_HOUSING_TYPE", "NAME_INCOME_TYPE",
	}
	if err := w.Write(header); err != nil {
		return runID, nil, fmt.Errorf("write header: %w", err)
	}

	// Bad rows are spread evenly so skip accounting is exact and
	// reproducible.
	badEvery := 0
	if cfg.BadRows > 0 {
		badEvery = cfg.Rows / cfg.BadRows
	}

	rows := make([]GeneratedRow, 0, cfg.Rows)
	badWritten := 0
	for i := 0; i < cfg.Rows; i++ {
		id := int64(firstClientID + i)

		if badEvery > 0 && badWritten < cfg.BadRows && i%badEvery == 0 {
			badWritten++
			bad := []string{
				strconv.FormatInt(id, 10), "0", "not-a-number",
				strconv.FormatFloat(rng.Float64()*maxCredit, 'f', 2, 64),
				"-12000", pick(rng, familyStatuses), pick(rng, educations), pick(rng, housingTypes), pick(rng, incomeTypes),
			}
			if err := w.Write(bad); err != nil {
				return runID, nil, fmt.Errorf("write row: %w", err)
			}
			continue
		}

		income := rng.Float64() * maxIncome
		if rng.Float64() < zeroIncomeShare {
			income = 0
		}
		credit := rng.Float64() * maxCredit
		days := -(minAgeDays + rng.Intn(maxAgeDays-minAgeDays))

		// Round-trip through the written representation so the recorded
		// values match what the server will parse, bit for bit.
		incomeStr := strconv.FormatFloat(income, 'f', 2, 64)
		creditStr := strconv.FormatFloat(credit, 'f', 2, 64)
		income, _ = strconv.ParseFloat(incomeStr, 64)
		credit, _ = strconv.ParseFloat(creditStr, 64)

		row := []string{
			strconv.FormatInt(id, 10),
			strconv.Itoa(rng.Intn(2)),
			incomeStr,
			creditStr,
			strconv.Itoa(days),
			pick(rng, familyStatuses),
			pick(rng, educations),
			pick(rng, housingTypes),
			pick(rng, incomeTypes),
		}
		if err := w.Write(row); err != nil {
			return runID, nil, fmt.Errorf("write row: %w", err)
		}
		rows = append(rows, GeneratedRow{ID: id, Income: income, Credit: credit})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return runID, nil, fmt.Errorf("flush dataset: %w", err)
	}
	return runID, rows, nil
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}
