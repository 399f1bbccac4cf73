package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSearch_ParsesSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "amsterdam", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("rows"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"docs":[
			{"id":"adr-1","type":"adres","weergavenaam":"Dam 1, Amsterdam","centroide_ll":"POINT(4.8936 52.3731)"},
			{"id":"adr-2","type":"adres","weergavenaam":"No centroid","centroide_ll":""}
		]}}`))
	}))
	defer srv.Close()

	svc := NewService(Config{URL: srv.URL, Rows: 5, TimeoutSeconds: 5}, zap.NewNop())

	got, err := svc.Search(context.Background(), "amsterdam")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "adr-1", got[0].ID)
	assert.Equal(t, "Dam 1, Amsterdam", got[0].DisplayName)
	assert.InDelta(t, 52.3731, got[0].Lat, 1e-9)
	assert.InDelta(t, 4.8936, got[0].Lon, 1e-9)
}

func TestSearch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewService(Config{URL: srv.URL, Rows: 5, TimeoutSeconds: 5}, zap.NewNop())

	_, err := svc.Search(context.Background(), "x")
	assert.ErrorContains(t, err, "status 503")
}

func TestParsePointWKT(t *testing.T) {
	tests := []struct {
		name string
		wkt  string
		lat  float64
		lon  float64
		ok   bool
	}{
		{"Valid", "POINT(5.1214 52.0907)", 52.0907, 5.1214, true},
		{"Empty", "", 0, 0, false},
		{"NotAPoint", "LINESTRING(1 2, 3 4)", 0, 0, false},
		{"Garbage", "POINT(a b)", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok := parsePointWKT(tt.wkt)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.lat, lat, 1e-9)
				assert.InDelta(t, tt.lon, lon, 1e-9)
			}
		})
	}
}
