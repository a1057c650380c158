// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package haproxy

// Aggregate folds the per-host entries of one proxy into a cluster-wide view.
// Counters and gauges are summed; a field stays nil only if every host left it
// nil. Average timings take the worst host, downtime the longest and
// last change the most recent. Host is cleared and a status that differs
// between hosts becomes DEGRADED.
func Aggregate(ps []Proxy) Proxy {
	if len(ps) == 0 {
		return Proxy{}
	}

	out := Proxy{
		Name:        ps[0].Name,
		Service:     ps[0].Service,
		Status:      ps[0].Status,
		Mode:        ps[0].Mode,
		CheckStatus: ps[0].CheckStatus,
	}
	for _, p := range ps[1:] {
		if p.Status != out.Status {
			out.Status = StatusDegraded
		}
		if p.Mode != out.Mode {
			out.Mode = ""
		}
		if p.CheckStatus != out.CheckStatus {
			out.CheckStatus = ""
		}
	}

	for _, p := range ps {
		sumLimited(&out.Session.Rate, p.Session.Rate)
		sumLimited(&out.Session.Count, p.Session.Count)
		out.Session.Total = safeSum(out.Session.Total, p.Session.Total)

		sumRate(&out.Connection.Rate, p.Connection.Rate)
		out.Connection.Total = safeSum(out.Connection.Total, p.Connection.Total)
		out.Connection.Error = safeSum(out.Connection.Error, p.Connection.Error)

		sumRate(&out.Requests.Rate, p.Requests.Rate)
		out.Requests.Total = safeSum(out.Requests.Total, p.Requests.Total)
		out.Requests.Intercepted = safeSum(out.Requests.Intercepted, p.Requests.Intercepted)
		out.Requests.FailedRewrites = safeSum(out.Requests.FailedRewrites, p.Requests.FailedRewrites)

		out.Bytes.In = safeSum(out.Bytes.In, p.Bytes.In)
		out.Bytes.Out = safeSum(out.Bytes.Out, p.Bytes.Out)

		out.Denied.Requests = safeSum(out.Denied.Requests, p.Denied.Requests)
		out.Denied.Responses = safeSum(out.Denied.Responses, p.Denied.Responses)

		out.Errors.Requests = safeSum(out.Errors.Requests, p.Errors.Requests)
		out.Errors.Connections = safeSum(out.Errors.Connections, p.Errors.Connections)
		out.Errors.Responses = safeSum(out.Errors.Responses, p.Errors.Responses)
		out.Errors.ClientAborts = safeSum(out.Errors.ClientAborts, p.Errors.ClientAborts)
		out.Errors.ServerAborts = safeSum(out.Errors.ServerAborts, p.Errors.ServerAborts)

		out.Warnings.Retries = safeSum(out.Warnings.Retries, p.Warnings.Retries)
		out.Warnings.Redispatches = safeSum(out.Warnings.Redispatches, p.Warnings.Redispatches)

		out.Weight = safeSum(out.Weight, p.Weight)
		out.Active = safeSum(out.Active, p.Active)
		out.Backup = safeSum(out.Backup, p.Backup)
		out.Downtime = safeMax(out.Downtime, p.Downtime)
		out.LastChange = safeMin(out.LastChange, p.LastChange)

		h := &out.HTTPResponses
		h.Status1xx = safeSum(h.Status1xx, p.HTTPResponses.Status1xx)
		h.Status2xx = safeSum(h.Status2xx, p.HTTPResponses.Status2xx)
		h.Status3xx = safeSum(h.Status3xx, p.HTTPResponses.Status3xx)
		h.Status4xx = safeSum(h.Status4xx, p.HTTPResponses.Status4xx)
		h.Status5xx = safeSum(h.Status5xx, p.HTTPResponses.Status5xx)
		h.Other = safeSum(h.Other, p.HTTPResponses.Other)
		h.Compressed2xx = safeSum(h.Compressed2xx, p.HTTPResponses.Compressed2xx)

		out.Time.Queue = safeMax(out.Time.Queue, p.Time.Queue)
		out.Time.Connect = safeMax(out.Time.Connect, p.Time.Connect)
		out.Time.Response = safeMax(out.Time.Response, p.Time.Response)
		out.Time.Total = safeMax(out.Time.Total, p.Time.Total)
		out.Time.ResponseMax = safeMax(out.Time.ResponseMax, p.Time.ResponseMax)

		out.Cache.Lookups = safeSum(out.Cache.Lookups, p.Cache.Lookups)
		out.Cache.Hits = safeSum(out.Cache.Hits, p.Cache.Hits)
	}
	return out
}

// Aggregated is the cluster-wide view of Groups: one Proxy per name.
type Aggregated struct {
	Frontends map[string]Proxy `json:"frontends"`
	Backends  map[string]Proxy `json:"backends"`
	Workers   map[string]Proxy `json:"workers"`
}

// AggregateGroups aggregates every proxy of g.
func AggregateGroups(g Groups) Aggregated {
	return Aggregated{
		Frontends: aggregateAll(g.Frontends),
		Backends:  aggregateAll(g.Backends),
		Workers:   aggregateAll(g.Workers),
	}
}

func aggregateAll(m map[string][]Proxy) map[string]Proxy {
	out := make(map[string]Proxy, len(m))
	for name, ps := range m {
		out[name] = Aggregate(ps)
	}
	return out
}

func sumLimited(dst *Limited, src Limited) {
	dst.Current = safeSum(dst.Current, src.Current)
	dst.Max = safeSum(dst.Max, src.Max)
	dst.Limit = safeSum(dst.Limit, src.Limit)
}

func sumRate(dst *Rate, src Rate) {
	dst.Current = safeSum(dst.Current, src.Current)
	dst.Max = safeSum(dst.Max, src.Max)
}

func safeSum(a, b *int64) *int64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		return a
	}
	v := *a + *b
	return &v
}

func safeMax(a, b *int64) *int64 {
	if a == nil || (b != nil && *b > *a) {
		if b == nil {
			return nil
		}
		v := *b
		return &v
	}
	return a
}

func safeMin(a, b *int64) *int64 {
	if a == nil || (b != nil && *b < *a) {
		if b == nil {
			return nil
		}
		v := *b
		return &v
	}
	return a
}
