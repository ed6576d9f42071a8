// Package datastore persists a log of webhook invocations for audit and
// debugging. The log is advisory: a write failure never fails the request it
// describes.
package datastore

import (
	"context"
	"time"
)

type Invocation struct {
	UID          string    `json:"uid" db:"id"`
	EndpointPath string    `json:"endpoint_path" db:"endpoint_path"`
	Handler      string    `json:"handler" db:"handler"`
	Username     string    `json:"username" db:"username"`
	Passed       bool      `json:"passed" db:"passed"`
	Message      string    `json:"message" db:"message"`
	DurationMS   int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type InvocationRepository interface {
	CreateInvocation(ctx context.Context, inv *Invocation) error
	FindRecentInvocations(ctx context.Context, limit int) ([]Invocation, error)
	FindInvocationsByEndpoint(ctx context.Context, endpointPath string, limit int) ([]Invocation, error)
}
