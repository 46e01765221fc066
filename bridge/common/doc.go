// Package common provides shared data structures and utilities used across
// the bridge packages.
//
// The package focuses on:
//
//   - Defining the JSON wire protocol spoken with the extension
//   - Configuration structures for the bridge process
//   - Logging infrastructure
//
// Key Components:
//
//   - Request: Outbound request frames with factory functions per operation
//   - Reply: Inbound reply frames, discriminated by ReplyType
//   - Ack: Acknowledgement frames returned for routed replies
//   - BridgeConfig: Process configuration including per-kind reply timeouts
//   - InitLoggers: Logger setup keeping all output away from stdout
package common
