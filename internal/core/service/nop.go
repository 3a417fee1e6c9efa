package service

import (
	"context"

	"github.com/lingoleap/learning-api/internal/core/domain"
)

type nopThrottle struct{}

func (nopThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (nopThrottle) RecordFailure(context.Context, string) error { return nil }
func (nopThrottle) Reset(context.Context, string) error { return nil }

type nopRecorder struct{}

func (nopRecorder) Record(domain.SessionEvent) {}
