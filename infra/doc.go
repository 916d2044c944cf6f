// Package infra contains technical adapters: the MQTT observation and
// prediction client, metrics sinks for Prometheus and InfluxDB, and the
// zerolog-backed logger. These packages should depend only on the
// interfaces defined in the core packages.
package infra
