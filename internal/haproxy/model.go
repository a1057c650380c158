// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package haproxy

import (
	"strconv"
	"strings"
)

// Kinds of stats rows, taken from the svname column.
const (
	KindFrontend = "FRONTEND"
	KindBackend  = "BACKEND"
)

// StatusDegraded is reported when hosts disagree about a proxy's status.
const StatusDegraded = "DEGRADED"

// Row is one line of the stats CSV keyed by column name ("pxname", "svname", ...).
type Row map[string]string

// Limited is a current/max/limit triple. Nil means HAProxy did not report the
// value; a nil Limit means unlimited.
type Limited struct {
	Current *int64 `json:"current"`
	Max     *int64 `json:"max"`
	Limit   *int64 `json:"limit"`
}

// Rate is a current/max pair without a configured limit.
type Rate struct {
	Current *int64 `json:"current"`
	Max     *int64 `json:"max"`
}

type Session struct {
	Rate  Limited `json:"rate"`
	Count Limited `json:"count"`
	Total *int64  `json:"total"`
}

type Connection struct {
	Rate  Rate   `json:"rate"`
	Total *int64 `json:"total"`
	Error *int64 `json:"error"`
}

// HTTPRequests is only reported by frontends in http mode.
type HTTPRequests struct {
	Rate           Rate   `json:"rate"`
	Total          *int64 `json:"total"`
	Intercepted    *int64 `json:"intercepted"`
	FailedRewrites *int64 `json:"failedRewrites"`
}

type Bytes struct {
	In  *int64 `json:"in"`
	Out *int64 `json:"out"`
}

type Denied struct {
	Requests  *int64 `json:"requests"`
	Responses *int64 `json:"responses"`
}

// Errors counts failures. ClientAborts and ServerAborts are data transfers
// aborted by the client or the server.
type Errors struct {
	Requests     *int64 `json:"requests"`
	Connections  *int64 `json:"connections"`
	Responses    *int64 `json:"responses"`
	ClientAborts *int64 `json:"clientAborts"`
	ServerAborts *int64 `json:"serverAborts"`
}

type Warnings struct {
	Retries      *int64 `json:"retries"`
	Redispatches *int64 `json:"redispatches"`
}

// HTTPResponses counts responses by status class. Compressed2xx is the
// share of 2xx responses that were compressed.
type HTTPResponses struct {
	Status1xx     *int64 `json:"1xx"`
	Status2xx     *int64 `json:"2xx"`
	Status3xx     *int64 `json:"3xx"`
	Status4xx     *int64 `json:"4xx"`
	Status5xx     *int64 `json:"5xx"`
	Other         *int64 `json:"other"`
	Compressed2xx *int64 `json:"2xxCompressed"`
}

// Time holds average timings in milliseconds over the last 1024 requests,
// plus the longest response time seen.
type Time struct {
	Queue       *int64 `json:"queue"`
	Connect     *int64 `json:"connect"`
	Response    *int64 `json:"response"`
	Total       *int64 `json:"total"`
	ResponseMax *int64 `json:"responseMax"`
}

type Cache struct {
	Lookups *int64 `json:"lookups"`
	Hits    *int64 `json:"hits"`
}

// Proxy is one stats row (or, after Aggregate, the sum of rows across hosts).
type Proxy struct {
	Host          string        `json:"host,omitempty"`
	Name          string        `json:"name"`
	Service       string        `json:"service"`
	Status        string        `json:"status"`
	Mode          string        `json:"mode,omitempty"`
	Session       Session       `json:"session"`
	Connection    Connection    `json:"connection"`
	Requests      HTTPRequests  `json:"requests"`
	Bytes         Bytes         `json:"bytes"`
	Denied        Denied        `json:"denied"`
	Errors        Errors        `json:"errors"`
	Warnings      Warnings      `json:"warnings"`
	Weight        *int64        `json:"weight"`
	Active        *int64        `json:"active"`
	Backup        *int64        `json:"backup"`
	Downtime      *int64        `json:"downtime"`
	LastChange    *int64        `json:"lastChange"`
	CheckStatus   string        `json:"checkStatus,omitempty"`
	HTTPResponses HTTPResponses `json:"httpResponses"`
	Time          Time          `json:"time"`
	Cache         Cache         `json:"cache"`
}

// ProxyFromRow maps a stats row reported by host into the typed model.
func ProxyFromRow(host string, row Row) Proxy {
	status := row["status"]
	if status == "" {
		status = "UNKNOWN"
	}

	return Proxy{
		Host:    host,
		Name:    row["pxname"],
		Service: row["svname"],
		Status:  status,
		Mode:    row["mode"],
		Session: Session{
			Rate:  limited(row["rate"], row["rate_max"], row["rate_lim"]),
			Count: limited(row["scur"], row["smax"], row["slim"]),
			Total: safeInt(row["stot"]),
		},
		Connection: Connection{
			Rate:  rate(row["conn_rate"], row["conn_rate_max"]),
			Total: safeInt(row["conn_tot"]),
			Error: safeInt(row["econ"]),
		},
		Requests: HTTPRequests{
			Rate:           rate(row["req_rate"], row["req_rate_max"]),
			Total:          safeInt(row["req_tot"]),
			Intercepted:    safeInt(row["intercepted"]),
			FailedRewrites: safeInt(row["wrew"]),
		},
		Bytes: Bytes{
			In:  safeInt(row["bin"]),
			Out: safeInt(row["bout"]),
		},
		Denied: Denied{
			Requests:  safeInt(row["dreq"]),
			Responses: safeInt(row["dresp"]),
		},
		Errors: Errors{
			Requests:     safeInt(row["ereq"]),
			Connections:  safeInt(row["econ"]),
			Responses:    safeInt(row["eresp"]),
			ClientAborts: safeInt(row["cli_abrt"]),
			ServerAborts: safeInt(row["srv_abrt"]),
		},
		Warnings: Warnings{
			Retries:      safeInt(row["wretr"]),
			Redispatches: safeInt(row["wredis"]),
		},
		Weight:      safeInt(row["weight"]),
		Active:      safeInt(row["act"]),
		Backup:      safeInt(row["bck"]),
		Downtime:    safeInt(row["downtime"]),
		LastChange:  safeInt(row["lastchg"]),
		CheckStatus: strings.TrimSpace(row["check_status"]),
		HTTPResponses: HTTPResponses{
			Status1xx:     safeInt(row["hrsp_1xx"]),
			Status2xx:     safeInt(row["hrsp_2xx"]),
			Status3xx:     safeInt(row["hrsp_3xx"]),
			Status4xx:     safeInt(row["hrsp_4xx"]),
			Status5xx:     safeInt(row["hrsp_5xx"]),
			Other:         safeInt(row["hrsp_other"]),
			Compressed2xx: safeInt(row["comp_rsp"]),
		},
		Time: Time{
			Queue:       safeInt(row["qtime"]),
			Connect:     safeInt(row["ctime"]),
			Response:    safeInt(row["rtime"]),
			Total:       safeInt(row["ttime"]),
			ResponseMax: safeInt(row["rtime_max"]),
		},
		Cache: Cache{
			Lookups: safeInt(row["cache_lookups"]),
			Hits:    safeInt(row["cache_hits"]),
		},
	}
}

// limited applies the stats conventions: a limit that is absent or not
// positive means unlimited, and max never reads lower than current.
func limited(current, maxV, limit string) Limited {
	l := Limited{
		Current: safeInt(current),
		Max:     safeInt(maxV),
		Limit:   safeInt(limit),
	}
	if l.Limit != nil && *l.Limit <= 0 {
		l.Limit = nil
	}
	if l.Current != nil && (l.Max == nil || *l.Max < *l.Current) {
		v := *l.Current
		l.Max = &v
	}
	return l
}

func rate(current, maxV string) Rate {
	r := Rate{Current: safeInt(current), Max: safeInt(maxV)}
	if r.Current != nil && (r.Max == nil || *r.Max < *r.Current) {
		v := *r.Current
		r.Max = &v
	}
	return r
}

// safeInt parses a non-negative decimal cell; anything else is nil.
func safeInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
