// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lxd

import "time"

// NoLocation is the location LXD reports for instances of a non-clustered server.
const NoLocation = "none"

// Instance is the subset of an LXD instance the dashboard shows.
type Instance struct {
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Location     string    `json:"location"`
	Type         string    `json:"type"`
	Project      string    `json:"project"`
	Architecture string    `json:"architecture"`
	CreatedAt    time.Time `json:"created_at"`
}

// Inventory maps cluster member -> instance name -> status.
type Inventory map[string]map[string]string

// GroupByLocation groups instances by the cluster member they run on.
func GroupByLocation(instances []Instance) Inventory {
	inv := make(Inventory)
	for _, in := range instances {
		loc := in.Location
		if loc == "" {
			loc = NoLocation
		}
		byName, ok := inv[loc]
		if !ok {
			byName = make(map[string]string)
			inv[loc] = byName
		}
		byName[in.Name] = in.Status
	}
	return inv
}

// Counts returns the number of instances per location and status.
func (inv Inventory) Counts() map[string]map[string]int {
	out := make(map[string]map[string]int, len(inv))
	for loc, byName := range inv {
		counts := make(map[string]int)
		for _, status := range byName {
			counts[status]++
		}
		out[loc] = counts
	}
	return out
}
