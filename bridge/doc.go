// Package bridge groups the core of the feedbridge native messaging host,
// the machinery correlating synchronous HTTP requests with the asynchronous
// framed replies of a browser extension peer.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures shared across the bridge, including the
//     wire protocol types, configuration structures and logging.
//
//   - transport: The framed channel abstraction with the stdio
//     implementation used by native messaging hosts.
//
//   - correlation: The concurrency-safe table matching outbound requests
//     with their eventual inbound replies, plus the shared unread snapshot.
//
//   - host: The inbound router loop and the synchronous dispatch API the
//     HTTP layer calls into.
package bridge
