// Package http implements the HTTP handlers for the delivery analytics
// dashboard. It is a thin layer between transport and the service
// layer, keeping handlers focused solely on HTTP concerns.
//
// Handlers follow one pattern:
//
//  1. Decode and validate the request body
//  2. Call the dashboard service
//  3. Render the result, or an error envelope with the matching status
//
// All error responses share the envelope produced by the errors
// package, so clients always see the same {"success", "error"} shape
// with the matching HTTP status.
package http
