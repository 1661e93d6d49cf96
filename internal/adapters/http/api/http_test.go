package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/gage/internal/adapters/archive"
	"github.com/okian/gage/internal/adapters/dataset"
	"github.com/okian/gage/internal/adapters/http/api"
	"github.com/okian/gage/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps is a hand-written implementation of api.Dependencies with
// canned answers per method.
type mockDeps struct {
	records map[int64]model.Record
	scores  map[int64]model.ScoreResult

	summary    dataset.SummaryResult
	summaryErr error
	series     dataset.Series

	reloadStats dataset.LoadStats
	reloadErr   error

	history    []archive.Entry
	historyErr error

	state dataset.State
	count int

	lastFilter dataset.Filter
	lastLimit  int
	archived   []model.ScoreResult
}

func (m *mockDeps) GetRecord(_ context.Context, id int64) (model.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return model.Record{}, dataset.ErrRecordNotFound
	}
	return rec, nil
}

func (m *mockDeps) ComputeScore(_ context.Context, id int64) (model.ScoreResult, error) {
	res, ok := m.scores[id]
	if !ok {
		return model.ScoreResult{}, dataset.ErrRecordNotFound
	}
	return res, nil
}

func (m *mockDeps) Summary(_ context.Context, f dataset.Filter) (dataset.SummaryResult, error) {
	m.lastFilter = f
	return m.summary, m.summaryErr
}

func (m *mockDeps) SeriesSample(_ context.Context, f dataset.Filter, limit int) (dataset.Series, error) {
	m.lastFilter = f
	m.lastLimit = limit
	return m.series, nil
}

func (m *mockDeps) Reload(context.Context) (dataset.LoadStats, error) {
	return m.reloadStats, m.reloadErr
}

func (m *mockDeps) ArchiveAnalysis(_ context.Context, res model.ScoreResult) bool {
	m.archived = append(m.archived, res)
	return true
}

func (m *mockDeps) History(context.Context, int64, int) ([]archive.Entry, error) {
	return m.history, m.historyErr
}

func (m *mockDeps) DatasetState() dataset.State { return m.state }

func (m *mockDeps) RecordCount(context.Context) int { return m.count }

// mockStats is a hand-written implementation of api.StatsProvider.
type mockStats struct {
	stats map[string]interface{}
}

func (m *mockStats) GetStats() map[string]interface{} { return m.stats }

func newTestServer(deps *mockDeps, cooldown time.Duration) *httptest.Server {
	mux := http.NewServeMux()
	srv := api.NewServer(deps, &mockStats{stats: map[string]interface{}{"started": true}}, cooldown)
	srv.Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func decodeBody(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer func() { _ = res.Body.Close() }()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func TestRecordEndpoint(t *testing.T) {
	deps := &mockDeps{
		records: map[int64]model.Record{
			100002: {ID: 100002, Income: 202_500, CreditAmount: 406_597.5, DaysBirth: -9461, FamilyStatus: "Married"},
		},
		state: dataset.StateReady,
	}
	ts := newTestServer(deps, 0)
	defer ts.Close()

	Convey("Given the record endpoint", t, func() {
		Convey("When an existing client is requested", func() {
			res, err := http.Get(ts.URL + "/api/record/100002")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var body map[string]any
			decodeBody(t, res, &body)

			Convey("Then the record includes the derived age", func() {
				So(body["id"], ShouldEqual, 100002)
				So(body["income"], ShouldEqual, 202_500)
				So(body["age_years"], ShouldEqual, 25)
				So(body["family_status"], ShouldEqual, "Married")
			})
		})

		Convey("When an unknown client is requested", func() {
			res, err := http.Get(ts.URL + "/api/record/999999999")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)

			var body map[string]any
			decodeBody(t, res, &body)
			So(body["code"], ShouldEqual, "not_found")
		})

		Convey("When the id is not an integer", func() {
			res, err := http.Get(ts.URL + "/api/record/abc")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)

			var body map[string]any
			decodeBody(t, res, &body)
			So(body["code"], ShouldEqual, "bad_request")
		})

		Convey("When the id is missing entirely", func() {
			res, err := http.Get(ts.URL + "/api/record/")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			_ = res.Body.Close()
		})

		Convey("When the method is not GET", func() {
			res, err := http.Post(ts.URL+"/api/record/100002", "application/json", nil)
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
			_ = res.Body.Close()
		})
	})
}

func TestScoreEndpoint(t *testing.T) {
	score := model.ScoreResult{
		ClientID: 100002,
		Score:    0.5,
		Tier:     model.TierModerate,
		Decision: model.DecisionDefault,
		Explanation: model.Explanation{
			Ratio: 0.5, IncomePercentile: 0.8, CreditPercentile: 0.4, Tier: model.TierModerate,
		},
	}
	deps := &mockDeps{
		records: map[int64]model.Record{
			100002: {ID: 100002, Income: 300_000, CreditAmount: 150_000, HousingType: "House / apartment"},
		},
		scores: map[int64]model.ScoreResult{100002: score},
		state:  dataset.StateReady,
	}
	ts := newTestServer(deps, 0)
	defer ts.Close()

	Convey("Given the score endpoint", t, func() {
		Convey("When an existing client is scored", func() {
			res, err := http.Get(ts.URL + "/api/score/100002")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var body struct {
				model.ScoreResult
				Factors struct {
					Positive []string `json:"positive"`
					Negative []string `json:"negative"`
				} `json:"factors"`
			}
			decodeBody(t, res, &body)

			Convey("Then the full score payload is returned", func() {
				So(body.ClientID, ShouldEqual, 100002)
				So(body.Score, ShouldEqual, 0.5)
				So(body.Tier, ShouldEqual, model.TierModerate)
				So(body.Decision, ShouldEqual, model.DecisionDefault)
				So(body.Explanation.IncomePercentile, ShouldEqual, 0.8)
			})

			Convey("And the influence factors reflect the record", func() {
				So(body.Factors.Positive, ShouldContain, "income well above the population average")
				So(body.Factors.Positive, ShouldContain, "known housing situation: House / apartment")
				So(body.Factors.Negative, ShouldBeEmpty)
			})

			Convey("And the analysis was handed to the archive", func() {
				So(deps.archived, ShouldNotBeEmpty)
				So(deps.archived[len(deps.archived)-1].ClientID, ShouldEqual, 100002)
			})
		})

		Convey("When an unknown client is scored", func() {
			res, err := http.Get(ts.URL + "/api/score/999999999")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
			_ = res.Body.Close()
		})
	})
}

func TestSummaryEndpoint(t *testing.T) {
	deps := &mockDeps{
		summary: dataset.SummaryResult{Count: 42, MeanIncome: 168_000, MeanCredit: 599_000, MeanRatio: 3.2},
		state:   dataset.StateReady,
	}
	ts := newTestServer(deps, 0)
	defer ts.Close()

	Convey("Given the summary endpoint", t, func() {
		Convey("When filters are passed as query parameters", func() {
			res, err := http.Get(ts.URL + "/api/summary?family_status=Married&min_income=100000&max_credit=500000")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var body dataset.SummaryResult
			decodeBody(t, res, &body)

			Convey("Then the aggregate is returned", func() {
				So(body.Count, ShouldEqual, 42)
				So(body.MeanRatio, ShouldEqual, 3.2)
			})

			Convey("And the filter reached the core intact", func() {
				So(deps.lastFilter.FamilyStatus, ShouldEqual, "Married")
				So(deps.lastFilter.MinIncome, ShouldNotBeNil)
				So(*deps.lastFilter.MinIncome, ShouldEqual, 100_000)
				So(deps.lastFilter.MaxCredit, ShouldNotBeNil)
				So(*deps.lastFilter.MaxCredit, ShouldEqual, 500_000)
				So(deps.lastFilter.MinCredit, ShouldBeNil)
			})
		})

		Convey("When a numeric bound is malformed", func() {
			res, err := http.Get(ts.URL + "/api/summary?min_income=lots")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			_ = res.Body.Close()
		})
	})
}

func TestDatavizEndpoint(t *testing.T) {
	deps := &mockDeps{
		series: dataset.Series{
			Incomes: []float64{100_000, 200_000},
			Credits: []float64{50_000, 75_000},
			Targets: []int{0, 1},
		},
		state: dataset.StateReady,
	}
	ts := newTestServer(deps, 0)
	defer ts.Close()

	Convey("Given the dataviz endpoint", t, func() {
		Convey("When a series is requested with a limit", func() {
			res, err := http.Get(ts.URL + "/api/dataviz?limit=500&income_type=Working")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var body dataset.Series
			decodeBody(t, res, &body)

			Convey("Then the series and the limit pass through", func() {
				So(body.Incomes, ShouldHaveLength, 2)
				So(body.Targets, ShouldResemble, []int{0, 1})
				So(deps.lastLimit, ShouldEqual, 500)
				So(deps.lastFilter.IncomeType, ShouldEqual, "Working")
			})
		})

		Convey("When the limit is not a positive integer", func() {
			res, err := http.Get(ts.URL + "/api/dataviz?limit=-5")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			_ = res.Body.Close()
		})
	})
}

func TestReloadEndpoint(t *testing.T) {
	Convey("Given the reload endpoint", t, func() {
		Convey("When a reload succeeds", func() {
			deps := &mockDeps{reloadStats: dataset.LoadStats{RecordCount: 307_511, SkippedCount: 12}}
			ts := newTestServer(deps, time.Hour)
			defer ts.Close()

			res, err := http.Post(ts.URL+"/api/reload", "application/json", nil)
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var body map[string]any
			decodeBody(t, res, &body)
			So(body["status"], ShouldEqual, "reloaded")
			So(body["record_count"], ShouldEqual, 307_511)
			So(body["skipped_count"], ShouldEqual, 12)

			Convey("Then a second reload inside the cooldown is rate limited", func() {
				res, err := http.Post(ts.URL+"/api/reload", "application/json", nil)
				So(err, ShouldBeNil)
				So(res.StatusCode, ShouldEqual, http.StatusTooManyRequests)

				var body map[string]any
				decodeBody(t, res, &body)
				So(body["code"], ShouldEqual, "rate_limited")
			})
		})

		Convey("When another reload is already in flight", func() {
			deps := &mockDeps{reloadErr: dataset.ErrReloadInProgress}
			ts := newTestServer(deps, time.Hour)
			defer ts.Close()

			res, err := http.Post(ts.URL+"/api/reload", "application/json", nil)
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusConflict)

			var body map[string]any
			decodeBody(t, res, &body)
			So(body["code"], ShouldEqual, "reload_in_progress")
		})

		Convey("When the source is malformed", func() {
			deps := &mockDeps{reloadErr: dataset.ErrMalformedSource}
			ts := newTestServer(deps, time.Hour)
			defer ts.Close()

			res, err := http.Post(ts.URL+"/api/reload", "application/json", nil)
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)

			var body map[string]any
			decodeBody(t, res, &body)
			So(body["code"], ShouldEqual, "malformed_source")
		})

		Convey("When the source file is missing", func() {
			deps := &mockDeps{reloadErr: dataset.ErrSourceNotFound}
			ts := newTestServer(deps, time.Hour)
			defer ts.Close()

			res, err := http.Post(ts.URL+"/api/reload", "application/json", nil)
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
			_ = res.Body.Close()
		})

		Convey("When the method is GET", func() {
			deps := &mockDeps{}
			ts := newTestServer(deps, time.Hour)
			defer ts.Close()

			res, err := http.Get(ts.URL + "/api/reload")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
			_ = res.Body.Close()
		})
	})
}

func TestHistoryEndpoint(t *testing.T) {
	Convey("Given the history endpoint", t, func() {
		Convey("When archived analyses exist", func() {
			deps := &mockDeps{
				history: []archive.Entry{
					{AnalysisID: "a1", ClientID: 100002, Score: 0.5, Tier: "moderate", Decision: "default", CreatedAt: time.Now().UTC()},
				},
			}
			ts := newTestServer(deps, 0)
			defer ts.Close()

			res, err := http.Get(ts.URL + "/api/history?client_id=100002&limit=10")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var body struct {
				Analyses []archive.Entry `json:"analyses"`
			}
			decodeBody(t, res, &body)
			So(body.Analyses, ShouldHaveLength, 1)
			So(body.Analyses[0].AnalysisID, ShouldEqual, "a1")
		})

		Convey("When the archive holds nothing, the listing is an empty array", func() {
			deps := &mockDeps{history: nil}
			ts := newTestServer(deps, 0)
			defer ts.Close()

			res, err := http.Get(ts.URL + "/api/history")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var body map[string]any
			decodeBody(t, res, &body)
			analyses, ok := body["analyses"].([]any)
			So(ok, ShouldBeTrue)
			So(analyses, ShouldBeEmpty)
		})

		Convey("When the archive is disabled", func() {
			deps := &mockDeps{historyErr: archive.ErrDisabled}
			ts := newTestServer(deps, 0)
			defer ts.Close()

			res, err := http.Get(ts.URL + "/api/history")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)

			var body map[string]any
			decodeBody(t, res, &body)
			So(body["code"], ShouldEqual, "archive_disabled")
		})

		Convey("When the client id is malformed", func() {
			deps := &mockDeps{}
			ts := newTestServer(deps, 0)
			defer ts.Close()

			res, err := http.Get(ts.URL + "/api/history?client_id=zero")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			_ = res.Body.Close()
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	deps := &mockDeps{state: dataset.StateReady, count: 307_511}
	ts := newTestServer(deps, 0)
	defer ts.Close()

	Convey("Given the health endpoint", t, func() {
		res, err := http.Get(ts.URL + "/healthz")
		So(err, ShouldBeNil)
		So(res.StatusCode, ShouldEqual, http.StatusOK)

		var body map[string]any
		decodeBody(t, res, &body)
		So(body["status"], ShouldEqual, "healthy")
		So(body["state"], ShouldEqual, "ready")
		So(body["records"], ShouldEqual, 307_511)
	})
}

func TestStatsEndpoint(t *testing.T) {
	deps := &mockDeps{}
	ts := newTestServer(deps, 0)
	defer ts.Close()

	Convey("Given the stats endpoint", t, func() {
		res, err := http.Get(ts.URL + "/stats")
		So(err, ShouldBeNil)
		So(res.StatusCode, ShouldEqual, http.StatusOK)

		var body map[string]any
		decodeBody(t, res, &body)
		So(body["started"], ShouldEqual, true)
	})
}
