// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package routes

// Views shipped by the web bundle.
const (
	ViewContainers View = "Containers"
	ViewPing       View = "Ping"
)

// Default returns the application route table served under basePath.
func Default(basePath string) Table {
	return New(ModeHistory, basePath,
		Route{Path: "/", Name: "Containers", View: ViewContainers},
		Route{Path: "/ping", Name: "Ping", View: ViewPing},
	)
}
