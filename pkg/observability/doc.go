/*
Package observability turns engine lifecycle hooks into logs and Prometheus metrics.

Hooks from several sources can be combined with MergeHooks, so a host can log, count
and stream reveals at the same time.
*/
package observability
