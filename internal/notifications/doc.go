// Package notifications posts pipeline lifecycle events to a configured
// webhook. Delivery failures with 5xx status are retried with exponential
// backoff; when no webhook is configured every call is a no-op.
package notifications
