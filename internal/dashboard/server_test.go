package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProStatistics/internal/model"
	"ProStatistics/internal/recorder"
)

func newTestServer(t *testing.T, table *model.AlignedTable, opts Options) http.Handler {
	t.Helper()
	srv, err := NewServer(NewStore(table), opts)
	require.NoError(t, err)
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_Index(t *testing.T) {
	h := newTestServer(t, sampleTable(), Options{})

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<title>Pro-Statistics</title>")
	assert.Contains(t, body, "(2012–2015, 4 years)")
	for _, id := range []string{ParamYAxis, ParamColorAxisBar, ParamSizeAxis, ParamColorScatter} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, `/charts/bar.svg?y=GDP&amp;color=Inflation`)
	assert.Contains(t, body, `/charts/scatter.svg?y=GDP&amp;size=Inflation&amp;color=Inflation`)
	assert.Equal(t, 4, strings.Count(body, `<option value="Inflation"`))
	assert.Contains(t, body, "All Rights Reserved João Fidalgo. Data Source: Eurostat.")
}

func TestServer_IndexKeepsSelections(t *testing.T) {
	h := newTestServer(t, sampleTable(), Options{})

	rec := get(t, h, "/?y_axis_column=Inflation&color_axis_fig1=GDP")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `/charts/bar.svg?y=Inflation&amp;color=GDP`)
	assert.Contains(t, body, `/charts/scatter.svg?y=Inflation&amp;size=Inflation&amp;color=Inflation`)
	assert.Contains(t, body, `<option value="GDP" selected>`)

	rec = get(t, h, "/?y_axis_column=Unemployment")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ChartSVG(t *testing.T) {
	h := newTestServer(t, sampleTable(), Options{})

	for _, target := range []string{
		"/charts/bar.svg",
		"/charts/bar.svg?y=Inflation&color=GDP",
		"/charts/scatter.svg",
		"/charts/scatter.svg?y=Inflation&size=GDP&color=GDP",
	} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg", target)
	}
}

func TestServer_ChartSVG_SingleRowAndEmpty(t *testing.T) {
	single := model.NewAlignedTable([]model.Row{{Year: "2000", GDP: 10, Inflation: 1.5}}, time.Time{})
	h := newTestServer(t, single, Options{})
	for _, target := range []string{"/charts/bar.svg", "/charts/scatter.svg"} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "<svg")
	}

	h = newTestServer(t, model.NewAlignedTable(nil, time.Time{}), Options{})
	rec := get(t, h, "/charts/scatter.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no data")

	rec = get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RejectsUnknownColumn(t *testing.T) {
	h := newTestServer(t, sampleTable(), Options{})

	for _, target := range []string{
		"/charts/bar.svg?y=Population",
		"/charts/scatter.svg?size=gdp",
		"/api/figures/bar?color=x",
		"/api/figures/scatter?y=1",
	} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "unknown column", target)
	}
}

func TestServer_ScatterFigureJSON(t *testing.T) {
	tbl := model.NewAlignedTable([]model.Row{
		{Year: "2014", GDP: 173054, Inflation: -3.2},
		{Year: "2015", GDP: 179713, Inflation: 0.5},
	}, time.Time{})
	h := newTestServer(t, tbl, Options{})

	rec := get(t, h, "/api/figures/scatter?y=GDP&size=Inflation&color=Inflation")
	require.Equal(t, http.StatusOK, rec.Code)

	var fig Figure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fig))
	assert.Equal(t, KindScatter, fig.Kind)
	require.Len(t, fig.Points, 2)
	assert.Equal(t, 3.2, fig.Points[0].Size)
	assert.Equal(t, -3.2, fig.Points[0].Color)
}

func TestServer_TableAndHealth(t *testing.T) {
	h := newTestServer(t, sampleTable(), Options{})

	rec := get(t, h, "/api/table")
	require.Equal(t, http.StatusOK, rec.Code)
	var tbl model.AlignedTable
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tbl))
	assert.Equal(t, sampleTable().Rows, tbl.Rows)

	rec = get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","rows":4}`, rec.Body.String())

	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prostatistics_table_rows")
}

type fakeHistory struct {
	snaps []recorder.SnapshotInfo
	err   error
}

func (f fakeHistory) ListSnapshots(int) ([]recorder.SnapshotInfo, error) { return f.snaps, f.err }

func TestServer_History(t *testing.T) {
	h := newTestServer(t, sampleTable(), Options{})
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/history").Code)

	h = newTestServer(t, sampleTable(), Options{History: fakeHistory{snaps: []recorder.SnapshotInfo{{ID: 7, Source: "eurostat", Rows: 4}}}})
	rec := get(t, h, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)

	h = newTestServer(t, sampleTable(), Options{History: fakeHistory{err: errors.New("locked")}})
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/api/history").Code)
}

func TestServer_DebugReloadsTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<p>{{.Title}} v1</p>`), 0o644))
	h := newTestServer(t, sampleTable(), Options{Debug: true, TemplateDir: dir})

	assert.Contains(t, get(t, h, "/").Body.String(), "Pro-Statistics v1")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<p>{{.Title}} v2</p>`), 0o644))
	assert.Contains(t, get(t, h, "/").Body.String(), "Pro-Statistics v2")
}

func TestStore_SwapsTables(t *testing.T) {
	s := NewStore(nil)
	assert.Equal(t, 0, s.Table().Len())

	first := sampleTable()
	s.Set(first)
	assert.Same(t, first, s.Table())

	s.Set(nil)
	assert.Same(t, first, s.Table(), "nil must not clear the served table")
}
