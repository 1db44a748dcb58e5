// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import "fmt"

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// DecodeError reports a row that could not be turned into a domain entity.
type DecodeError struct {
	Entity string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s row: %v", e.Entity, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
