package service

import "errors"

// Business rule failures returned by PoolService
var (
	ErrPoolNotFound  = errors.New("pool not found")
	ErrAlreadyMember = errors.New("user already participates in this pool")
)

// ErrCodeExhausted is returned when every generated code collided with an existing pool
var ErrCodeExhausted = errors.New("could not generate a unique pool code")

// IsBusinessError reports whether err is a business rule failure
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrPoolNotFound) || errors.Is(err, ErrAlreadyMember)
}
