// Package pkguid provides the identifier generators used across the repo:
// time-ordered UUIDs for request correlation ids, 32-char hex ids shaped like
// W3C trace ids, and snowflake numbers for sourcemap upload batches.
package pkguid
