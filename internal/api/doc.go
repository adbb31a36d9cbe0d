// Package api exposes the local diagnostics HTTP surface for the hosted
// task pool: health, pool statistics, Prometheus metrics, and a development
// harness for submitting tasks. The surface is in-process and bound to
// localhost during development; it does not distribute the pool across
// processes.
package api
