package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"calblock/core/calendar"
)

// Provider is a mock implementation of calendar.Provider
type Provider struct {
	mock.Mock
}

func (m *Provider) ListEvents(ctx context.Context, account string, window calendar.Window) ([]calendar.Event, error) {
	args := m.Called(ctx, account, window)
	if events, ok := args.Get(0).([]calendar.Event); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) CreateBlocker(ctx context.Context, account string, tpl calendar.Event) error {
	args := m.Called(ctx, account, tpl)
	return args.Error(0)
}

func (m *Provider) DeleteEvent(ctx context.Context, account string, ref string) error {
	args := m.Called(ctx, account, ref)
	return args.Error(0)
}
