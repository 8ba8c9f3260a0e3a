// Package core implements the gateway runtime: credential contracts, the
// rate-limited retrying request executor, the operation registry, and the
// dispatcher that binds symbolic tool requests to typed handlers and
// normalizes every outcome into a response envelope.
package core
