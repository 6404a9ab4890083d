// Package requestid tags every request with an id that flows into logs.
package requestid
