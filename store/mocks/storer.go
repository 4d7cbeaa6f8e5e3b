// Package mocks contains a mock of the store package interfaces
package mocks

import (
	"github.com/stretchr/testify/mock"
)

// Storer holds a mock to implement of mock of StringStorer
type Storer struct {
	mock.Mock
}

// GetString mocks an implementation of GetString
func (ms *Storer) GetString(key string) (value string, err error) {
	args := ms.Called(key)

	return args.String(0), args.Error(1)
}

// PutString mocks an implementation of PutString
func (ms *Storer) PutString(key string, value string) (err error) {
	args := ms.Called(key, value)

	return args.Error(0)
}

// Close mocks an implementation of Close
func (ms *Storer) Close() (err error) {
	args := ms.Called()

	return args.Error(0)
}
