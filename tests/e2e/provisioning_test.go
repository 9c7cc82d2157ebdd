package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// provisioningRequest builds a valid submission from whatever the backend
// catalog currently offers.
func provisioningRequest(t *testing.T, name string) map[string]interface{} {
	t.Helper()

	resp, body := httpGet(t, catalogAPIURL+"/catalog/options")
	require.Equal(t, 200, resp.StatusCode, "get catalog options: %s", body)
	opts := parseJSON(t, body)

	pick := func(key, field string) string {
		list, _ := opts[key].([]interface{})
		require.NotEmpty(t, list, "catalog offers no %s", key)
		first, _ := list[0].(map[string]interface{})
		v, _ := first[field].(string)
		require.NotEmpty(t, v, "catalog %s entry missing %s", key, field)
		return v
	}

	strategies, _ := opts["strategies"].([]interface{})
	require.NotEmpty(t, strategies, "catalog offers no strategies")
	strategy, _ := strategies[0].(string)

	return map[string]interface{}{
		"name":              name,
		"description":       "e2e provisioning test",
		"location":          pick("locations", "name"),
		"provider":          pick("providers", "name"),
		"design":            pick("designs", "name"),
		"strategy":          strategy,
		"emulation":         true,
		"management_subnet": "172.16.0.0/24",
		"customer_subnet":   "172.16.1.0/24",
		"technical_subnet":  "172.16.2.0/24",
	}
}

// TestProvisioningLifecycle drives a full run: submit -> wait for success ->
// verify the proposed change -> resubmit and get the same run back untouched.
func TestProvisioningLifecycle(t *testing.T) {
	name := uniqueName("e2e-dc")
	req := provisioningRequest(t, name)

	// Step 1: Submit the data center.
	resp, body := httpPost(t, catalogAPIURL+"/datacenters", req)
	require.Equal(t, 202, resp.StatusCode, "submit data center: %s", body)
	run := parseJSON(t, body)
	runID, _ := run["id"].(string)
	require.NotEmpty(t, runID)
	require.Equal(t, name, run["name"])
	t.Logf("submitted run: %s", runID)

	// Step 2: Wait for the run to succeed.
	run = waitForRunStatus(t, runID, "succeeded", provisionTimeout)
	t.Logf("run succeeded: %s", runID)

	// Step 3: The outcome names the proposed change and the branch.
	_, outcome := getRunDetail(t, runID)
	require.Equal(t, "success", outcome["kind"], "outcome: %v", outcome)
	pcURL, _ := run["proposed_change_url"].(string)
	require.NotEmpty(t, pcURL, "succeeded run should carry a proposed change URL")
	branch, _ := run["branch_name"].(string)
	require.NotEmpty(t, branch)
	t.Logf("proposed change: %s on branch %s", pcURL, branch)

	// Step 4: Every stage is recorded as succeeded.
	resp, body = httpGet(t, catalogAPIURL+"/runs/"+runID)
	require.Equal(t, 200, resp.StatusCode, body)
	detail := parseJSON(t, body)
	stagesRaw, _ := detail["stages"].([]interface{})
	require.Len(t, stagesRaw, 4, "expected all four stages recorded: %s", body)
	for _, s := range stagesRaw {
		stage, _ := s.(map[string]interface{})
		require.Equal(t, "succeeded", stage["status"], "stage %v", stage["stage"])
	}

	// Step 5: Resubmitting the same name returns the recorded run untouched.
	resp, body = httpPost(t, catalogAPIURL+"/datacenters", req)
	require.Equal(t, 200, resp.StatusCode, "resubmit: %s", body)
	again := parseJSON(t, body)
	require.Equal(t, runID, again["id"], "resubmission must attach to the same run")
	require.Equal(t, "succeeded", again["status"])
	t.Logf("resubmission attached to run %s", runID)

	// Step 6: Resuming a succeeded run is rejected.
	resp, body = httpPost(t, catalogAPIURL+"/runs/"+runID+"/resume", nil)
	require.Equal(t, 409, resp.StatusCode, "resume of succeeded run: %s", body)

	// Step 7: The run shows up in the listing.
	resp, body = httpGet(t, catalogAPIURL+"/runs?search="+name)
	require.Equal(t, 200, resp.StatusCode, body)
	items := parsePaginatedItems(t, body)
	require.Len(t, items, 1, "search should find exactly the new run")
	require.Equal(t, runID, items[0]["id"])

	// Step 8: The provisioned topology appears in the catalog.
	resp, body = httpGet(t, catalogAPIURL+"/catalog/datacenters")
	require.Equal(t, 200, resp.StatusCode, body)
	dcs := parseJSONArray(t, body)
	found := false
	for _, dc := range dcs {
		if n, _ := dc["name"].(string); n == name {
			found = true
			break
		}
	}
	require.True(t, found, "data center %s not in catalog listing", name)
}

func TestProvisioningValidation(t *testing.T) {
	// Structural problems are rejected before any run is recorded.
	resp, body := httpPost(t, catalogAPIURL+"/datacenters", map[string]interface{}{
		"name": "Bad Name!",
	})
	require.Equal(t, 400, resp.StatusCode, "invalid submission: %s", body)

	// An unknown strategy is rejected by the catalog defaults.
	req := provisioningRequest(t, uniqueName("e2e-badstrategy"))
	req["strategy"] = "rip-v1"
	resp, body = httpPost(t, catalogAPIURL+"/datacenters", req)
	require.Equal(t, 400, resp.StatusCode, "unknown strategy: %s", body)
}

func TestProvisioningCancel(t *testing.T) {
	name := uniqueName("e2e-cancel")
	req := provisioningRequest(t, name)

	resp, body := httpPost(t, catalogAPIURL+"/datacenters", req)
	require.Equal(t, 202, resp.StatusCode, "submit data center: %s", body)
	run := parseJSON(t, body)
	runID, _ := run["id"].(string)
	require.NotEmpty(t, runID)

	// Cancel while the workflow is still driving stages. Delivery happens at
	// the next stage boundary, so the run may still finish a stage first.
	resp, body = httpPost(t, catalogAPIURL+"/runs/"+runID+"/cancel", nil)
	require.Equal(t, 202, resp.StatusCode, "cancel run: %s", body)

	final := waitForRunTerminal(t, runID, provisionTimeout)
	status, _ := final["status"].(string)
	t.Logf("run %s finished as %q after cancel", runID, status)
	require.Contains(t, []string{"cancelled", "partial", "succeeded"}, status)

	// A cancelled run can be re-driven to completion.
	if status == "cancelled" || status == "partial" {
		resp, body = httpPost(t, catalogAPIURL+"/runs/"+runID+"/resume", nil)
		require.Equal(t, 202, resp.StatusCode, "resume cancelled run: %s", body)
		waitForRunStatus(t, runID, "succeeded", provisionTimeout)
		t.Logf("run %s resumed to success", runID)
	}
}

func TestHealthEndpoints(t *testing.T) {
	base := catalogAPIURL[:len(catalogAPIURL)-len("/api/v1")]

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	resp, err = http.Get(base + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode, "readyz should pass with db and temporal up")
}
