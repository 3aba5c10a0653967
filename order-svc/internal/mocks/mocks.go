// Package mocks holds testify mocks of the service ports.
package mocks

import (
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// value returns the i-th return value as T, or T's zero value when the
// expectation returned nil.
func value[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}
