// Package factory provides a small generic registry used to build pluggable
// components from configuration. A component is described by a type string
// and a map of raw settings; the registered factory decodes the settings into
// its own struct and returns the implementation.
//
// The metrics sinks are built this way:
//
//	sinks:
//	  - type: prometheus
//	  - type: influx
//	    conf: {url: "http://influx:8086", org: "ops", bucket: "trail"}
package factory
