package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	cases := map[string]Amount{
		`12.5`:   12.5,
		`"12.5"`: 12.5,
		`" 7 "`:  7,
		`null`:   0,
		`"abc"`:  0,
		`true`:   0,
		`"1e3"`:  1000,
		`-4`:     -4,
	}
	for in, want := range cases {
		var got struct {
			V Amount `json:"v"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"v":`+in+`}`), &got), in)
		assert.Equal(t, want, got.V, in)
	}
}

func TestAmount_NonFiniteIsZero(t *testing.T) {
	for _, in := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Infinity"`, `"1e400"`} {
		var got struct {
			V Amount `json:"v"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"v":`+in+`}`), &got), in)
		assert.Equal(t, Amount(0), got.V, in)
	}
}

func TestCount_UnmarshalJSON(t *testing.T) {
	cases := map[string]Count{
		`12`:     12,
		`"12"`:   12,
		`"3.9"`:  3,
		`null`:   0,
		`"many"`: 0,
		`"NaN"`:  0,
	}
	for in, want := range cases {
		var got struct {
			V Count `json:"v"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"v":`+in+`}`), &got), in)
		assert.Equal(t, want, got.V, in)
	}
}

func TestUnwrapData(t *testing.T) {
	assert.JSONEq(t, `[1,2]`, string(unwrapData(json.RawMessage(`{"data":[1,2]}`))))
	assert.JSONEq(t, `[1,2]`, string(unwrapData(json.RawMessage(`[1,2]`))))
	assert.JSONEq(t, `{"count":3}`, string(unwrapData(json.RawMessage(`{"count":3}`))))
	assert.Nil(t, unwrapData(json.RawMessage(`null`)))
	assert.Nil(t, unwrapData(json.RawMessage(`{"data":null}`)))
	assert.Nil(t, unwrapData(nil))
}

func TestInvoiceBalance(t *testing.T) {
	assert.Equal(t, 30.0, Invoice{Total: 100, AmountPaid: 70}.Balance())
	assert.Equal(t, 0.0, Invoice{Total: 100, AmountPaid: 120}.Balance())
}

func TestGetJSON_SendsHeadersAndJoinsPath(t *testing.T) {
	var gotPath, gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"success":true,"data":{"count":5}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", "tok", time.Second).WithHTTPClient(srv.Client())
	got, err := getJSON[UnreadCount](context.Background(), c, PathUnreadCount)
	require.NoError(t, err)

	assert.Equal(t, Count(5), got.Count)
	assert.Equal(t, "/api/notifications/unread-count", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestGetJSON_NoTokenNoHeader(t *testing.T) {
	sawAuth := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second).WithHTTPClient(srv.Client())
	got, err := getJSON[[]Project](context.Background(), c, PathProjects)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, sawAuth)
}

func TestGetJSON_Errors(t *testing.T) {
	for name, tc := range map[string]struct {
		status int
		body   string
	}{
		"server error": {http.StatusBadGateway, `{"success":true,"data":[]}`},
		"unsuccessful": {http.StatusOK, `{"success":false,"error":{"code":"X"}}`},
		"not json":     {http.StatusOK, `<html>`},
		"wrong shape":  {http.StatusOK, `{"success":true,"data":{"data":{"id":"x"}}}`},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", time.Second).WithHTTPClient(srv.Client())
			got, err := getJSON[[]Invoice](context.Background(), c, PathInvoices)
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}
