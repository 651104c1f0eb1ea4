// Package sandbox runs coder-generated visualization code in a restricted
// ECMAScript interpreter. Instead of filtering imports by name, the runtime
// is handed an explicit, pre-built namespace: the charts DSL and the
// interpreter's own value built-ins are the only symbols available, and no
// module or host-access mechanism is exposed at all.
//
// Generated code builds a chart with the bound charts namespace and assigns
// it to a global named "chart":
//
//	var chart = charts.line()
//	    .title("Drone flights per year")
//	    .x(["2021", "2022", "2023"])
//	    .series("flights", [120, 180, 260]);
//
// The executor validates the source against a dangerous-pattern blocklist
// before interpreting, enforces a wall-clock budget via interpreter
// interrupts, extracts the chart object and renders it to embeddable HTML.
package sandbox
