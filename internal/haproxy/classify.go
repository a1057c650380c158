// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package haproxy

// Groups holds proxies keyed by proxy name, one entry per host.
type Groups struct {
	Frontends map[string][]Proxy `json:"frontends"`
	Backends  map[string][]Proxy `json:"backends"`
	Workers   map[string][]Proxy `json:"workers"`
}

// NewGroups returns empty, non-nil groups.
func NewGroups() Groups {
	return Groups{
		Frontends: make(map[string][]Proxy),
		Backends:  make(map[string][]Proxy),
		Workers:   make(map[string][]Proxy),
	}
}

// Classify splits the rows of one host by svname: FRONTEND, BACKEND, and
// everything else (servers) as workers.
func Classify(host string, rows []Row) Groups {
	g := NewGroups()
	g.add(host, rows)
	return g
}

func (g Groups) add(host string, rows []Row) {
	for _, row := range rows {
		p := ProxyFromRow(host, row)
		switch p.Service {
		case KindFrontend:
			g.Frontends[p.Name] = append(g.Frontends[p.Name], p)
		case KindBackend:
			g.Backends[p.Name] = append(g.Backends[p.Name], p)
		default:
			g.Workers[p.Name] = append(g.Workers[p.Name], p)
		}
	}
}

// Merge appends other's entries after g's.
func (g Groups) Merge(other Groups) {
	for name, ps := range other.Frontends {
		g.Frontends[name] = append(g.Frontends[name], ps...)
	}
	for name, ps := range other.Backends {
		g.Backends[name] = append(g.Backends[name], ps...)
	}
	for name, ps := range other.Workers {
		g.Workers[name] = append(g.Workers[name], ps...)
	}
}

// Counts returns the number of frontend, backend and worker rows.
func (g Groups) Counts() (frontends, backends, workers int) {
	for _, ps := range g.Frontends {
		frontends += len(ps)
	}
	for _, ps := range g.Backends {
		backends += len(ps)
	}
	for _, ps := range g.Workers {
		workers += len(ps)
	}
	return frontends, backends, workers
}
