package domains

import (
	"context"
	"testing"

	"project-manager/core/agol"
	"project-manager/core/agol/mocks"
	"project-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const serviceURL = "https://example.test/FeatureServer"

func expectServiceInfo(client *mocks.Client, info *agol.ServiceInfo) {
	client.On("ServiceInfo", mock.Anything, serviceURL).Return(info, nil).Once()
}

func TestEndpoints_PrefersFirstLayer(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{
		Layers: []agol.LayerRef{{ID: 0, Name: "DomainValues"}},
		Tables: []agol.LayerRef{{ID: 1, Name: "Attachments"}, {ID: 2, Name: "FieldConfig"}},
	})

	svc := NewService(client, serviceURL, zap.NewNop())

	valuesURL, configURL, err := svc.endpoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, serviceURL+"/0", valuesURL)
	assert.Equal(t, serviceURL+"/2", configURL)
}

func TestEndpoints_SingleTableHoldsNoConfig(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{
		Layers: []agol.LayerRef{{ID: 0, Name: "DomainValues"}},
		Tables: []agol.LayerRef{{ID: 1, Name: "Attachments"}},
	})

	svc := NewService(client, serviceURL, zap.NewNop())

	valuesURL, configURL, err := svc.endpoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, serviceURL+"/0", valuesURL)
	assert.Empty(t, configURL)
}

func TestEndpoints_TableOnlyService(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{
		Tables: []agol.LayerRef{{ID: 3, Name: "DomainValues"}, {ID: 4, Name: "FieldConfig"}},
	})

	svc := NewService(client, serviceURL, zap.NewNop())

	valuesURL, configURL, err := svc.endpoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, serviceURL+"/3", valuesURL)
	assert.Equal(t, serviceURL+"/4", configURL)
}

func TestEndpoints_MemoizesDiscovery(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{
		Tables: []agol.LayerRef{{ID: 0, Name: "DomainValues"}},
	})

	svc := NewService(client, serviceURL, zap.NewNop())

	_, _, err := svc.endpoints(context.Background())
	require.NoError(t, err)
	valuesURL, configURL, err := svc.endpoints(context.Background())
	require.NoError(t, err)

	assert.Equal(t, serviceURL+"/0", valuesURL)
	assert.Empty(t, configURL)
	client.AssertNumberOfCalls(t, "ServiceInfo", 1)
}

func TestEndpoints_EmptyService(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{})

	svc := NewService(client, serviceURL, zap.NewNop())

	_, _, err := svc.endpoints(context.Background())
	assert.ErrorContains(t, err, "no layers or tables")
}

func TestFields_DistinctNamesAndConfigs(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{
		Layers: []agol.LayerRef{{ID: 0}},
		Tables: []agol.LayerRef{{ID: 1}, {ID: 2}},
	})

	client.On("Query", mock.Anything, serviceURL+"/0", mock.MatchedBy(func(opts agol.QueryOptions) bool {
		return opts.OutFields == "field_name" && opts.Extra["returnDistinctValues"] == "true"
	})).Return(&agol.QueryResult{Features: []agol.Feature{
		{Attributes: map[string]any{"field_name": "Status"}},
		{Attributes: map[string]any{"field_name": "Owner"}},
		{Attributes: map[string]any{"field_name": "Status"}},
	}}, nil)

	client.On("Query", mock.Anything, serviceURL+"/2", mock.Anything).Return(&agol.QueryResult{
		Features: []agol.Feature{
			{Attributes: map[string]any{
				"field_name": "Status", "is_dropdown": 1, "input_type": "text",
				"max_len": 50, "required": 1, "OBJECTID": float64(9),
			}},
		},
	}, nil)

	svc := NewService(client, serviceURL, zap.NewNop())

	fields, configs, err := svc.Fields(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Owner", "Status"}, fields)
	require.Contains(t, configs, "Status")
	assert.True(t, configs["Status"].IsDropdown)
	assert.Equal(t, reconcile.InputText, configs["Status"].InputType)
}

func TestOptions_CachesLookups(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{Layers: []agol.LayerRef{{ID: 0}}})

	client.On("Query", mock.Anything, serviceURL+"/0", mock.Anything).Return(&agol.QueryResult{
		Features: []agol.Feature{
			{Attributes: map[string]any{"field_name": "Status", "domain_value": "Open", "domain_label": "Open", "active": 1}},
			{Attributes: map[string]any{"field_name": "Status", "domain_value": "Closed", "domain_label": "Closed", "active": 0}},
		},
	}, nil).Once()

	svc := NewService(client, serviceURL, zap.NewNop())

	first, err := svc.Options(context.Background(), "Status", false)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Second lookup is served from cache; the single Once expectation holds.
	second, err := svc.Options(context.Background(), "Status", false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	client.AssertNumberOfCalls(t, "Query", 1)
}

func TestOptions_ActiveOnly(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{Layers: []agol.LayerRef{{ID: 0}}})

	client.On("Query", mock.Anything, serviceURL+"/0", mock.Anything).Return(&agol.QueryResult{
		Features: []agol.Feature{
			{Attributes: map[string]any{"field_name": "Status", "domain_value": "Open", "active": 1}},
			{Attributes: map[string]any{"field_name": "Status", "domain_value": "Closed", "active": 0}},
		},
	}, nil).Once()

	svc := NewService(client, serviceURL, zap.NewNop())

	values, err := svc.Options(context.Background(), "Status", true)
	require.NoError(t, err)

	require.Len(t, values, 1)
	assert.Equal(t, "Open", values[0].Value)
}

func TestReconcile_InvalidatesCacheAfterApply(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{Layers: []agol.LayerRef{{ID: 0}}})

	// Query is hit for the cache warm-up and twice more for the engine's
	// fresh snapshots (the cache is bypassed for reconciliation).
	client.On("Query", mock.Anything, serviceURL+"/0", mock.Anything).Return(&agol.QueryResult{}, nil)
	client.On("AddFeatures", mock.Anything, serviceURL+"/0", mock.Anything).Return([]agol.EditResult{
		{Success: true, ObjectID: 1},
	}, nil)

	svc := NewService(client, serviceURL, zap.NewNop())

	_, err := svc.Options(context.Background(), "Status", false)
	require.NoError(t, err)

	edited := []reconcile.DomainValue{{FieldName: "Status", Value: "Open", Label: "Open", Active: 1}}
	result, err := svc.Reconcile(context.Background(), "Status", edited, nil, reconcile.Options{Confirmed: true})
	require.NoError(t, err)
	require.True(t, result.Applied)

	// The cached entry is gone, so the next lookup queries again.
	_, found := svc.cache.Get(optionsCacheKey("Status", false))
	assert.False(t, found)
}

func TestReconcile_DryRunKeepsCache(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{Layers: []agol.LayerRef{{ID: 0}}})
	client.On("Query", mock.Anything, serviceURL+"/0", mock.Anything).Return(&agol.QueryResult{}, nil)

	svc := NewService(client, serviceURL, zap.NewNop())

	_, err := svc.Options(context.Background(), "Status", false)
	require.NoError(t, err)

	edited := []reconcile.DomainValue{{FieldName: "Status", Value: "Open", Active: 1}}
	result, err := svc.Reconcile(context.Background(), "Status", edited, nil, reconcile.Options{DryRun: true})
	require.NoError(t, err)
	assert.False(t, result.Applied)

	_, found := svc.cache.Get(optionsCacheKey("Status", false))
	assert.True(t, found)
	client.AssertNotCalled(t, "AddFeatures", mock.Anything, mock.Anything, mock.Anything)
}
