// Package api exposes a running bridge as a synchronous JSON API over HTTP
// for local clients such as feed reader frontends.
//
// The package focuses on:
//
//   - Translating HTTP queries into blocking bridge dispatch calls
//   - Keeping response shapes stable for existing clients, including the
//     cached-snapshot answer for timed-out refreshes
//   - Operational surface: health probe, Prometheus metrics and an optional
//     static status page
//
// Endpoints:
//
//   - GET /api/rss/unread: refresh and return the unread snapshot
//   - GET /api/rss/item?itemId=<id>: fetch a single item
//   - GET /api/rss/mark-read?itemId=<id>: mark an item as read
//   - GET /api/rss/folder?folder=<path>: list one folder's items
//   - GET /healthz: liveness plus bridge counters
//   - GET /metrics: Prometheus text format
//   - GET /: optional static index.html
//
// All JSON responses carry a wildcard CORS header so browser-based clients
// on other local origins can call the API directly.
package api
