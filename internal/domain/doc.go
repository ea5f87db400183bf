// Package domain contains shared domain types used across entity sub-packages.
// The todo entity lives in domain/todo. This root package holds sentinel
// errors, the field-level ValidationError and the Optional presence type used
// by partial updates.
package domain
