package domains

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"project-manager/core/agol"
	"project-manager/core/agol/mocks"
	"project-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(client *mocks.Client) *fiber.App {
	app := fiber.New()
	svc := NewService(client, serviceURL, zap.NewNop())
	NewHandler(svc, zap.NewNop()).RegisterRoutes(app)
	return app
}

func TestHandleReconcile_AppliesEditedTable(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{Layers: []agol.LayerRef{{ID: 0}}})
	client.On("Query", mock.Anything, serviceURL+"/0", mock.Anything).Return(&agol.QueryResult{}, nil)
	client.On("AddFeatures", mock.Anything, serviceURL+"/0", mock.Anything).Return([]agol.EditResult{
		{Success: true, ObjectID: 11},
	}, nil)

	app := newTestApp(client)

	body, _ := json.Marshal(ReconcileRequest{
		Values: []reconcile.DomainValue{{Value: "Open", Label: "Open", Active: 1}},
	})
	req := httptest.NewRequest("PUT", "/domains/Status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result reconcile.Result
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &result))

	assert.True(t, result.Applied)
	assert.Equal(t, 1, result.Plan.Summary.Adds)

	// The path parameter wins over whatever field name the body rows carry.
	client.AssertCalled(t, "AddFeatures", mock.Anything, serviceURL+"/0",
		mock.MatchedBy(func(features []agol.Feature) bool {
			return len(features) == 1 && features[0].Attributes["field_name"] == "Status"
		}))
}

func TestHandleReconcile_DryRunPlansOnly(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{Layers: []agol.LayerRef{{ID: 0}}})
	client.On("Query", mock.Anything, serviceURL+"/0", mock.Anything).Return(&agol.QueryResult{}, nil)

	app := newTestApp(client)

	body, _ := json.Marshal(ReconcileRequest{
		Values: []reconcile.DomainValue{{Value: "Open", Active: 1}},
		DryRun: true,
	})
	req := httptest.NewRequest("PUT", "/domains/Status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	client.AssertNotCalled(t, "AddFeatures", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleReconcile_RejectsUnknownInputType(t *testing.T) {
	client := &mocks.Client{}
	app := newTestApp(client)

	body := []byte(`{"values":[],"config":{"input_type":"timestamp"}}`)
	req := httptest.NewRequest("PUT", "/domains/Status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleImportCSV_ReconcilesUpload(t *testing.T) {
	client := &mocks.Client{}
	expectServiceInfo(client, &agol.ServiceInfo{Layers: []agol.LayerRef{{ID: 0}}})
	client.On("Query", mock.Anything, serviceURL+"/0", mock.Anything).Return(&agol.QueryResult{}, nil)
	client.On("AddFeatures", mock.Anything, serviceURL+"/0", mock.Anything).Return([]agol.EditResult{
		{Success: true, ObjectID: 1},
		{Success: true, ObjectID: 2},
	}, nil)

	app := newTestApp(client)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "status.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("value,label,active,email\nOpen,Open,1,\nClosed,Closed,0,\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/domains/Status/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result reconcile.Result
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.True(t, result.Applied)
	assert.Equal(t, 2, result.Plan.Summary.Adds)
}

func TestHandleImportCSV_BadUpload(t *testing.T) {
	client := &mocks.Client{}
	app := newTestApp(client)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "status.csv")
	_, _ = part.Write([]byte("label\nOpen\n"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/domains/Status/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
