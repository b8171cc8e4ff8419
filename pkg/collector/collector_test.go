package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/db"
	"github.com/dtnitsch/pageview-charts/pkg/pageviews"
)

type key struct {
	title   string
	variant string
}

// fakeSource serves canned series and errors; anything unknown is not found.
type fakeSource struct {
	series map[key]models.Series
	errs   map[key]error
	calls  []key
	onCall func()
}

func (f *fakeSource) Monthly(_ context.Context, title string, variant string) (models.Series, error) {
	k := key{title, variant}
	f.calls = append(f.calls, k)
	if f.onCall != nil {
		f.onCall()
	}
	if err, ok := f.errs[k]; ok {
		return nil, err
	}
	if s, ok := f.series[k]; ok {
		return s.Clone(), nil
	}
	return nil, &pageviews.FetchError{Kind: pageviews.KindNotFound, Title: title, Access: variant, Err: pageviews.ErrNoItems}
}

type recordedAccess struct {
	title   string
	variant string
	kind    pageviews.Kind
	months  int
}

type memLedger struct {
	rows []recordedAccess
}

func (m *memLedger) RecordAccess(title string, _ models.AccessType, variant string, kind pageviews.Kind, _ error, months int) error {
	m.rows = append(m.rows, recordedAccess{title, variant, kind, months})
	return nil
}

func obs(pairs ...any) models.Series {
	var s models.Series
	for i := 0; i < len(pairs); i += 2 {
		s = append(s, models.Observation{Timestamp: pairs[i].(string), Views: int64(pairs[i+1].(int))})
	}
	return s
}

func TestCollect_Desktop(t *testing.T) {
	src := &fakeSource{series: map[key]models.Series{
		{"Stegosaurus", "desktop"}: obs("2015070100", 10, "2015080100", 20),
	}}
	ledger := &memLedger{}
	c := New(src, ledger, nil, Options{})

	corpus, misses, err := c.Collect(context.Background(), []string{"Stegosaurus", "Tuebingosaurus"}, models.AccessDesktop)
	require.NoError(t, err)

	assert.Equal(t, obs("2015070100", 10, "2015080100", 20), corpus["Stegosaurus"])
	require.Contains(t, corpus, "Tuebingosaurus")
	assert.Empty(t, corpus["Tuebingosaurus"])
	assert.NotNil(t, corpus["Tuebingosaurus"])

	require.Len(t, misses, 1)
	assert.Equal(t, "Tuebingosaurus", misses[0].Title)
	assert.Equal(t, pageviews.KindNotFound, misses[0].Kind)
	assert.Equal(t, models.AccessDesktop, misses[0].Access)

	assert.Equal(t, []recordedAccess{
		{"Stegosaurus", "desktop", "", 2},
		{"Tuebingosaurus", "desktop", pageviews.KindNotFound, 0},
	}, ledger.rows)
}

func TestCollect_MobileSumsOntoAppBase(t *testing.T) {
	tests := []struct {
		name string
		web  models.Series
		app  models.Series
		want models.Series
	}{
		{
			name: "aligned",
			web:  obs("2015070100", 1, "2015080100", 2),
			app:  obs("2015070100", 10, "2015080100", 20),
			want: obs("2015070100", 11, "2015080100", 22),
		},
		{
			name: "web longer than app is truncated",
			web:  obs("2015070100", 1, "2015080100", 2, "2015090100", 3),
			app:  obs("2015070100", 10),
			want: obs("2015070100", 11),
		},
		{
			name: "app months without partner kept",
			web:  obs("2015070100", 1),
			app:  obs("2015070100", 10, "2015080100", 20),
			want: obs("2015070100", 11, "2015080100", 20),
		},
		{
			name: "both empty",
			web:  models.Series{},
			app:  models.Series{},
			want: models.Series{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{series: map[key]models.Series{
				{"Stegosaurus", "mobile-web"}: tt.web,
				{"Stegosaurus", "mobile-app"}: tt.app,
			}}
			corpus, misses, err := New(src, nil, nil, Options{}).Collect(context.Background(), []string{"Stegosaurus"}, models.AccessMobile)
			require.NoError(t, err)
			assert.Empty(t, misses)
			assert.Equal(t, tt.want, corpus["Stegosaurus"])
			assert.Equal(t, []key{{"Stegosaurus", "mobile-web"}, {"Stegosaurus", "mobile-app"}}, src.calls)
		})
	}
}

func TestCollect_MobileFailsClosed(t *testing.T) {
	src := &fakeSource{
		series: map[key]models.Series{
			{"Stegosaurus", "mobile-web"}: obs("2015070100", 1),
		},
		errs: map[key]error{
			{"Stegosaurus", "mobile-app"}: &pageviews.FetchError{Kind: pageviews.KindNetworkError, Err: errors.New("reset")},
		},
	}

	corpus, misses, err := New(src, nil, nil, Options{}).Collect(context.Background(), []string{"Stegosaurus"}, models.AccessMobile)
	require.NoError(t, err)
	assert.Empty(t, corpus["Stegosaurus"])
	require.Len(t, misses, 1)
	assert.Equal(t, "mobile-app", misses[0].Variant)
	assert.Equal(t, pageviews.KindNetworkError, misses[0].Kind)
}

func TestCollect_MobilePartial(t *testing.T) {
	src := &fakeSource{series: map[key]models.Series{
		{"Stegosaurus", "mobile-web"}: obs("2015070100", 1),
		{"Iguanodon", "mobile-app"}:   obs("2015070100", 7),
	}}

	corpus, misses, err := New(src, nil, nil, Options{MobilePartial: true}).Collect(context.Background(), []string{"Stegosaurus", "Iguanodon", "Nopesaurus"}, models.AccessMobile)
	require.NoError(t, err)

	assert.Equal(t, obs("2015070100", 1), corpus["Stegosaurus"])
	assert.Equal(t, obs("2015070100", 7), corpus["Iguanodon"])
	assert.Empty(t, corpus["Nopesaurus"])
	assert.Len(t, misses, 4)
}

func TestCollect_Cumulative(t *testing.T) {
	src := &fakeSource{series: map[key]models.Series{
		{"Stegosaurus", "all-access"}: obs("2015070100", 5, "2015080100", 0, "2015090100", 7),
	}}

	corpus, misses, err := New(src, nil, nil, Options{}).Collect(context.Background(), []string{"Stegosaurus", "Nopesaurus"}, models.AccessCumulative)
	require.NoError(t, err)

	assert.Equal(t, obs("2015070100", 5, "2015080100", 5, "2015090100", 12), corpus["Stegosaurus"])
	assert.Empty(t, corpus["Nopesaurus"])
	assert.Len(t, misses, 1)
}

func TestCollect_UntypedErrorCountsAsNetwork(t *testing.T) {
	src := &fakeSource{errs: map[key]error{
		{"Stegosaurus", "desktop"}: errors.New("boom"),
	}}

	_, misses, err := New(src, nil, nil, Options{}).Collect(context.Background(), []string{"Stegosaurus"}, models.AccessDesktop)
	require.NoError(t, err)
	require.Len(t, misses, 1)
	assert.Equal(t, pageviews.KindNetworkError, misses[0].Kind)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{
		series: map[key]models.Series{{"A", "desktop"}: obs("2015070100", 1)},
		onCall: cancel,
	}

	corpus, misses, err := New(src, nil, nil, Options{}).Collect(ctx, []string{"A", "B", "C"}, models.AccessDesktop)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, corpus)
	assert.Nil(t, misses)
	assert.Len(t, src.calls, 1)
}

func TestCollect_UnknownAccess(t *testing.T) {
	_, _, err := New(&fakeSource{}, nil, nil, Options{}).Collect(context.Background(), []string{"A"}, models.AccessType("tablet"))
	var unknown *UnknownAccessError
	assert.ErrorAs(t, err, &unknown)
}

func TestCollect_NoTitles(t *testing.T) {
	corpus, misses, err := New(&fakeSource{}, nil, nil, Options{}).Collect(context.Background(), nil, models.AccessDesktop)
	require.NoError(t, err)
	assert.Empty(t, corpus)
	assert.Empty(t, misses)
}

func TestDBLedger(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	runID, _, err := database.CreateRun("2015070100", "2022100100", 2)
	require.NoError(t, err)

	src := &fakeSource{series: map[key]models.Series{
		{"Stegosaurus", "mobile-web"}: obs("2015070100", 1),
		{"Stegosaurus", "mobile-app"}: obs("2015070100", 2),
	}}
	c := New(src, NewDBLedger(database, runID), nil, Options{})

	_, _, err = c.Collect(context.Background(), []string{"Stegosaurus", "Nopesaurus"}, models.AccessMobile)
	require.NoError(t, err)

	misses, err := database.GetRunMisses(runID)
	require.NoError(t, err)
	require.Len(t, misses, 2)
	assert.Equal(t, "Nopesaurus", misses[0].Title)
	assert.Equal(t, "not_found", misses[0].ErrorKind)
	assert.Equal(t, "mobile", misses[0].AccessType)
}
