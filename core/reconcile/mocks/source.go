package mocks

import (
	"context"

	"floorplan-sync/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Source is a mock implementation of reconcile.Source.
type Source struct {
	mock.Mock
}

func (m *Source) QueryAll(ctx context.Context, where string, fields []string) ([]reconcile.Feature, error) {
	args := m.Called(ctx, where, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reconcile.Feature), args.Error(1)
}

func (m *Source) QueryRecent(ctx context.Context, sinceDays int, fields []string, outSR int) ([]reconcile.Feature, error) {
	args := m.Called(ctx, sinceDays, fields, outSR)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reconcile.Feature), args.Error(1)
}

func (m *Source) FieldDomains(ctx context.Context) (reconcile.DomainMap, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(reconcile.DomainMap), args.Error(1)
}
