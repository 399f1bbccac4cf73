package mocks

import (
	"context"

	"project-manager/core/agol"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of agol.Client
type Client struct {
	mock.Mock
}

func (m *Client) EnsureToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *Client) Get(ctx context.Context, rawURL string, params map[string]string) (map[string]any, error) {
	args := m.Called(ctx, rawURL, params)
	if payload, ok := args.Get(0).(map[string]any); ok {
		return payload, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Post(ctx context.Context, rawURL string, form map[string]string) (map[string]any, error) {
	args := m.Called(ctx, rawURL, form)
	if payload, ok := args.Get(0).(map[string]any); ok {
		return payload, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Query(ctx context.Context, layerURL string, opts agol.QueryOptions) (*agol.QueryResult, error) {
	args := m.Called(ctx, layerURL, opts)
	if result, ok := args.Get(0).(*agol.QueryResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) AddFeatures(ctx context.Context, layerURL string, features []agol.Feature) ([]agol.EditResult, error) {
	args := m.Called(ctx, layerURL, features)
	if results, ok := args.Get(0).([]agol.EditResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateFeatures(ctx context.Context, layerURL string, features []agol.Feature) ([]agol.EditResult, error) {
	args := m.Called(ctx, layerURL, features)
	if results, ok := args.Get(0).([]agol.EditResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DeleteFeatures(ctx context.Context, layerURL string, where string) ([]agol.EditResult, error) {
	args := m.Called(ctx, layerURL, where)
	if results, ok := args.Get(0).([]agol.EditResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ApplyEdits(ctx context.Context, layerURL string, adds, updates []agol.Feature, deleteIDs []int64) (*agol.EditResponse, error) {
	args := m.Called(ctx, layerURL, adds, updates, deleteIDs)
	if response, ok := args.Get(0).(*agol.EditResponse); ok {
		return response, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ServiceInfo(ctx context.Context, serviceURL string) (*agol.ServiceInfo, error) {
	args := m.Called(ctx, serviceURL)
	if info, ok := args.Get(0).(*agol.ServiceInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}
