package watchlist

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ezpay/settlement-service/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0" encoding="utf-8"?>
<Watchlist>
	<Entry><AccountId>7</AccountId><Reason>chargeback ring</Reason></Entry>
	<Entry><AccountId>42</AccountId><Reason>mule account</Reason></Entry>
	<Entry><AccountId>not-a-number</AccountId></Entry>
</Watchlist>`

func newTestClient(url string) *Client {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(&config.Config{WatchlistURL: url}, log)
}

func TestFetchBlacklistedIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	ids, err := newTestClient(srv.URL).FetchBlacklistedIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 42}, ids, "non-numeric entries are skipped")
}

func TestFetchBlacklistedIDsEmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><Watchlist></Watchlist>`))
	}))
	defer srv.Close()

	ids, err := newTestClient(srv.URL).FetchBlacklistedIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFetchBlacklistedIDsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchBlacklistedIDs()
	require.Error(t, err)
}

func TestFetchBlacklistedIDsMalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<Watchlist><Entry>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchBlacklistedIDs()
	require.Error(t, err)
}
