// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package haproxy

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

func loadRows(t *testing.T) []Row {
	t.Helper()
	f, err := os.Open("testdata/stats.csv")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := ParseCSV(f)
	require.NoError(t, err)
	return rows
}

func TestParseCSV(t *testing.T) {
	rows := loadRows(t)
	require.Len(t, rows, 4)

	assert.Equal(t, "http-in", rows[0]["pxname"])
	assert.Equal(t, "FRONTEND", rows[0]["svname"])
	assert.Equal(t, "OPEN", rows[0]["status"])
	_, hasEmpty := rows[0][""]
	assert.False(t, hasEmpty, "trailing empty column is dropped")
}

func TestParseCSV_SkipsPreamble(t *testing.T) {
	in := "garbage\r\n# pxname,svname,status\r\nfe,FRONTEND,OPEN\r\n\r\n"
	rows, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"pxname": "fe", "svname": "FRONTEND", "status": "OPEN"}, rows[0])
}

func TestParseCSV_MissingHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("<html>login</html>\n"))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestProxyFromRow(t *testing.T) {
	rows := loadRows(t)

	fe := ProxyFromRow("lb1", rows[0])
	assert.Equal(t, "lb1", fe.Host)
	assert.Equal(t, "http-in", fe.Name)
	assert.Equal(t, KindFrontend, fe.Service)
	assert.Equal(t, "http", fe.Mode)
	assert.Equal(t, Limited{Current: i64(3), Max: i64(10), Limit: i64(2000)}, fe.Session.Count)
	assert.Equal(t, Limited{Current: i64(4), Max: i64(7)}, fe.Session.Rate, "rate_lim 0 means unlimited")
	assert.Equal(t, i64(120), fe.Session.Total)
	assert.Equal(t, Bytes{In: i64(5000), Out: i64(9000)}, fe.Bytes)
	assert.Equal(t, i64(100), fe.HTTPResponses.Status2xx)
	assert.Equal(t, Cache{Lookups: i64(6), Hits: i64(3)}, fe.Cache)
	assert.Nil(t, fe.Weight)
	assert.Nil(t, fe.Errors.Connections)
	assert.Equal(t, Connection{Rate: Rate{Current: i64(2), Max: i64(9)}, Total: i64(130)}, fe.Connection)
	assert.Equal(t, HTTPRequests{
		Rate:           Rate{Current: i64(1), Max: i64(5)},
		Total:          i64(120),
		Intercepted:    i64(4),
		FailedRewrites: i64(1),
	}, fe.Requests)
	assert.Equal(t, i64(0), fe.HTTPResponses.Compressed2xx)
	assert.Nil(t, fe.Errors.ClientAborts)

	web1 := ProxyFromRow("lb1", rows[1])
	assert.Equal(t, Rate{}, web1.Requests.Rate, "workers report no request rate")
	assert.Equal(t, i64(0), web1.Connection.Error)
	assert.Equal(t, i64(2), web1.Errors.ClientAborts)
	assert.Equal(t, i64(0), web1.Errors.ServerAborts)
	assert.Equal(t, i64(20), web1.Time.ResponseMax)

	web2 := ProxyFromRow("lb1", rows[2])
	assert.Equal(t, "web2", web2.Service)
	assert.Equal(t, "DOWN", web2.Status)
	assert.Equal(t, "L4CON", web2.CheckStatus)
	assert.Equal(t, Limited{Current: i64(2), Max: i64(2)}, web2.Session.Count, "max below current is raised")
	assert.Equal(t, i64(15), web2.Downtime)
}

func TestProxyFromRow_MissingStatus(t *testing.T) {
	p := ProxyFromRow("lb1", Row{"pxname": "x", "svname": "BACKEND"})
	assert.Equal(t, "UNKNOWN", p.Status)
	assert.Nil(t, p.Session.Count.Current)
	assert.Nil(t, p.Session.Count.Max)
}

func TestSafeInt(t *testing.T) {
	assert.Equal(t, i64(42), safeInt(" 42 "))
	assert.Nil(t, safeInt(""))
	assert.Nil(t, safeInt("-1"))
	assert.Nil(t, safeInt("1.5"))
	assert.Nil(t, safeInt("99999999999999999999"))
}

func TestClassify(t *testing.T) {
	g := Classify("lb1", loadRows(t))

	require.Len(t, g.Frontends["http-in"], 1)
	require.Len(t, g.Backends["web"], 1)
	require.Len(t, g.Workers["web"], 2)
	assert.Equal(t, "web1", g.Workers["web"][0].Service)

	fe, be, wk := g.Counts()
	assert.Equal(t, []int{1, 1, 2}, []int{fe, be, wk})

	g.Merge(Classify("lb2", loadRows(t)))
	require.Len(t, g.Frontends["http-in"], 2)
	assert.Equal(t, "lb2", g.Frontends["http-in"][1].Host)
}

func TestAggregate(t *testing.T) {
	rows := loadRows(t)
	a := ProxyFromRow("lb1", rows[1])
	b := ProxyFromRow("lb2", rows[2])

	agg := Aggregate([]Proxy{a, b})
	assert.Empty(t, agg.Host)
	assert.Equal(t, "web", agg.Name)
	assert.Equal(t, StatusDegraded, agg.Status)
	assert.Empty(t, agg.CheckStatus)
	assert.Equal(t, i64(3), agg.Session.Count.Current)
	assert.Equal(t, i64(6), agg.Session.Count.Max)
	assert.Nil(t, agg.Session.Count.Limit)
	assert.Equal(t, i64(5000), agg.Bytes.In)
	assert.Equal(t, i64(15), agg.Downtime, "longest downtime")
	assert.Equal(t, i64(20), agg.LastChange, "most recent change")
	assert.Equal(t, i64(16), agg.Time.Total, "worst average")
	assert.Nil(t, agg.Cache.Lookups, "nil on every host stays nil")
	assert.Equal(t, i64(3), agg.Errors.ClientAborts)
	assert.Equal(t, i64(3), agg.Errors.ServerAborts)
	assert.Equal(t, i64(1), agg.Requests.FailedRewrites)
	assert.Equal(t, i64(30), agg.Time.ResponseMax, "longest response")
	assert.Nil(t, agg.Connection.Total)
	assert.Equal(t, i64(0), agg.Connection.Error)

	// inputs are not modified
	assert.Equal(t, i64(1), a.Session.Count.Current)
}

func TestAggregate_SameStatus(t *testing.T) {
	rows := loadRows(t)
	agg := Aggregate([]Proxy{ProxyFromRow("lb1", rows[0]), ProxyFromRow("lb2", rows[0])})
	assert.Equal(t, "OPEN", agg.Status)
	assert.Equal(t, i64(4000), agg.Session.Count.Limit)
	assert.Equal(t, "http", agg.Mode)
	assert.Equal(t, Rate{Current: i64(4), Max: i64(18)}, agg.Connection.Rate)
	assert.Equal(t, i64(240), agg.Requests.Total)
	assert.Equal(t, i64(8), agg.Requests.Intercepted)
	assert.Equal(t, i64(0), agg.HTTPResponses.Compressed2xx)

	assert.Equal(t, Proxy{}, Aggregate(nil))
}

func TestAggregateGroups(t *testing.T) {
	g := Classify("lb1", loadRows(t))
	g.Merge(Classify("lb2", loadRows(t)))

	a := AggregateGroups(g)
	assert.Equal(t, i64(240), a.Frontends["http-in"].Session.Total)
	assert.Len(t, a.Workers, 1)
}
