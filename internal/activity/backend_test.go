package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"

	"github.com/netobs/dc-catalog/internal/catalog"
	"github.com/netobs/dc-catalog/internal/infrahub"
	"github.com/netobs/dc-catalog/internal/model"
)

func testBackend(srvURL string, retries int) *Backend {
	client := infrahub.NewClient(infrahub.Config{
		Address:       srvURL,
		Token:         "test-token",
		DefaultBranch: "main",
		Timeout:       5 * time.Second,
		Retries:       retries,
		Logger:        zerolog.Nop(),
	})
	return NewBackend(client, catalog.BuiltinDefaults())
}

func TestBackend_CreateBranch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"BranchCreate":{"ok":true,"object":{"id":"br-1","name":"add-dc-east-1"}}}}`))
	}))
	defer srv.Close()

	a := testBackend(srv.URL, 1)
	name, err := a.CreateBranch(context.Background(), CreateBranchParams{Name: "add-dc-east-1"})

	require.NoError(t, err)
	assert.Equal(t, "add-dc-east-1", name)
}

func TestBackend_CreateBranch_TransientExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := testBackend(srv.URL, 2)
	_, err := a.CreateBranch(context.Background(), CreateBranchParams{Name: "add-dc-east-1"})

	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	// The client exhausted its own retry budget, so Temporal must not retry.
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, model.ErrKindTransient, appErr.Type())
}

func TestBackend_CreateBranch_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"invalid token"}`))
	}))
	defer srv.Close()

	a := testBackend(srv.URL, 3)
	_, err := a.CreateBranch(context.Background(), CreateBranchParams{Name: "add-dc-east-1"})

	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, model.ErrKindNonRetryable, appErr.Type())
}

func TestBackend_LoadDataCenter_DefaultGroups(t *testing.T) {
	var gotReq struct {
		Variables map[string]any `json:"variables"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"data":{"TopologyDataCenterUpsert":{"ok":true,"object":{"id":"obj-7"}}}}`))
	}))
	defer srv.Close()

	a := testBackend(srv.URL, 1)
	id, err := a.LoadDataCenter(context.Background(), LoadDataCenterParams{
		Branch: "add-dc-east-1",
		Request: model.DataCenterRequest{
			Name: "dc-east-1", Strategy: model.StrategyOSPFIBGP,
			Location: "Atlanta", Provider: "Equinix", Design: "small-fabric",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "obj-7", id)

	data := gotReq.Variables["data"].(map[string]any)
	groups := data["member_of_groups"].([]any)
	require.Len(t, groups, 2)
	assert.Equal(t, map[string]any{"id": "topologies_dc"}, groups[0])
}

func TestBackend_LoadDataCenter_RequestGroupsWin(t *testing.T) {
	var gotReq struct {
		Variables map[string]any `json:"variables"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"data":{"TopologyDataCenterUpsert":{"ok":true,"object":{"id":"obj-7"}}}}`))
	}))
	defer srv.Close()

	a := testBackend(srv.URL, 1)
	_, err := a.LoadDataCenter(context.Background(), LoadDataCenterParams{
		Branch: "add-dc-east-1",
		Request: model.DataCenterRequest{
			Name: "dc-east-1", MemberGroups: []string{"lab_only"},
		},
	})

	require.NoError(t, err)
	data := gotReq.Variables["data"].(map[string]any)
	groups := data["member_of_groups"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, map[string]any{"id": "lab_only"}, groups[0])
}

func TestBackend_CountDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"DcimPhysicalDevice":{"count":12,"edges":[]}}}`))
	}))
	defer srv.Close()

	a := testBackend(srv.URL, 1)
	count, err := a.CountDevices(context.Background(), CountDevicesParams{
		Branch: "add-dc-east-1", Topology: "dc-east-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestBackend_CreateProposedChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"CoreProposedChangeCreate":{"ok":true,"object":{"id":"pc-9"}}}}`))
	}))
	defer srv.Close()

	a := testBackend(srv.URL, 1)
	change, err := a.CreateProposedChange(context.Background(), CreateProposedChangeParams{
		Name:              "Add Data Center: dc-east-1",
		Description:       "Proposed change to add new data center dc-east-1 in atlanta",
		SourceBranch:      "add-dc-east-1",
		DestinationBranch: "main",
	})

	require.NoError(t, err)
	assert.Equal(t, "pc-9", change.ID)
	assert.Equal(t, srv.URL+"/proposed-changes/pc-9", change.URL)
}
