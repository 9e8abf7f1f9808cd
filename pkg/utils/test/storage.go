package testutils

import (
	"context"
	"errors"

	"github.com/papercomputeco/dispatch/pkg/storage"
)

// FailingDriver is a storage.Driver whose writes always fail.
type FailingDriver struct{}

func (FailingDriver) Append(context.Context, *storage.LogRecord) error {
	return errors.New("disk full")
}

func (FailingDriver) Recent(context.Context, int) ([]*storage.LogRecord, error) {
	return nil, nil
}

func (FailingDriver) Close() error {
	return nil
}
