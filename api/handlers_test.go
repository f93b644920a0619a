package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/api"
	"github.com/warp/absence-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	handler := api.NewHandler(store, log)
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		// Arrays are decoded by the callers that expect them
		json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func seedDirectory(t *testing.T, base string) {
	t.Helper()

	officers := []map[string]any{
		{"id": "off-a", "name": "Rita Alves", "department": "Engineering", "can_approve": false},
		{"id": "off-b", "name": "Tomas Berg", "department": "Operations", "can_approve": false},
		{"id": "mgr-1", "name": "Nadia Farouk", "department": "HR", "can_approve": true},
	}
	for _, o := range officers {
		resp, _ := doJSON(t, http.MethodPost, base+"/api/officers", o)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	employees := []map[string]any{
		{"id": "emp-1", "name": "Omar Haddad", "department": "Engineering"},
		{"id": "emp-2", "name": "Lena Voss", "department": "Engineering"},
		{"id": "emp-3", "name": "Joao Pinto", "department": "Operations"},
	}
	for _, e := range employees {
		resp, _ := doJSON(t, http.MethodPost, base+"/api/employees", e)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

// =============================================================================
// END-TO-END FLOW
// =============================================================================

func TestAPI_ConsolidationFlow(t *testing.T) {
	// Full operator flow: submit overlapping reports, watch the approval
	// bounce on duplicates, resolve, approve, and verify the day is frozen.

	server := newTestServer(t)
	base := server.URL
	dayURL := base + "/api/days/2026-03-02"
	seedDirectory(t, base)

	// Two reports, both listing emp-1
	resp, report1 := doJSON(t, http.MethodPost, dayURL+"/reports", map[string]any{
		"officer_id": "off-a",
		"entries": []map[string]any{
			{"employee_id": "emp-1", "reason": "sick"},
			{"employee_id": "emp-2", "reason": "sick"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "SUBMITTED", report1["status"])

	resp, _ = doJSON(t, http.MethodPost, dayURL+"/reports", map[string]any{
		"officer_id": "off-b",
		"entries": []map[string]any{
			{"employee_id": "emp-1", "reason": "offsite"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Daily view shows OPEN with one duplicate group
	resp, view := doJSON(t, http.MethodGet, dayURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OPEN", view["state"])
	require.Len(t, view["duplicates"], 1)
	kpis := view["kpis"].(map[string]any)
	assert.EqualValues(t, 3, kpis["total_recorded"])
	assert.EqualValues(t, 2, kpis["unique_employees"])

	// Approval is blocked, with the duplicate group in the payload
	resp, blocked := doJSON(t, http.MethodPost, dayURL+"/approve", map[string]any{"actor_id": "mgr-1"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	groups := blocked["duplicates"].([]any)
	require.Len(t, groups, 1)
	group := groups[0].(map[string]any)
	assert.Equal(t, "emp-1", group["employee_id"])
	assert.Equal(t, "Omar Haddad", group["employee_name"])
	assert.Len(t, group["members"], 2)

	// Resolve cancels the later entry
	resp, resolved := doJSON(t, http.MethodPost, dayURL+"/resolve", map[string]any{"employee_id": "emp-1", "actor_id": "mgr-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, resolved["removed"])

	// Approval now succeeds
	resp, lock := doJSON(t, http.MethodPost, dayURL+"/approve", map[string]any{"actor_id": "mgr-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "LOCKED", lock["state"])

	// The locked day rejects further submissions
	resp, _ = doJSON(t, http.MethodPost, dayURL+"/reports", map[string]any{
		"officer_id": "off-a",
		"entries":    []map[string]any{{"employee_id": "emp-3"}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Lock state endpoint agrees
	resp, state := doJSON(t, http.MethodGet, dayURL+"/lock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, state["locked"])

	// Unapprove reopens the day
	resp, _ = doJSON(t, http.MethodPost, dayURL+"/unapprove", map[string]any{"actor_id": "mgr-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, state = doJSON(t, http.MethodGet, dayURL+"/lock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, state["locked"])

	// Audit trail recorded the transitions
	auditResp, err := http.Get(base + "/api/audit")
	require.NoError(t, err)
	defer auditResp.Body.Close()
	var events []map[string]any
	require.NoError(t, json.NewDecoder(auditResp.Body).Decode(&events))
	actions := make([]string, 0, len(events))
	for _, ev := range events {
		actions = append(actions, fmt.Sprint(ev["action"]))
	}
	assert.Contains(t, actions, "day.approved")
	assert.Contains(t, actions, "day.unapproved")
	assert.Contains(t, actions, "duplicate.resolved")
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_InvalidDate_BadRequest(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/days/03-02-2026", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestAPI_ValidationFailure_BadRequest(t *testing.T) {
	server := newTestServer(t)

	// officer_id is required
	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/days/2026-03-02/reports", map[string]any{
		"entries": []map[string]any{{"employee_id": "emp-1"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ApproveWithoutCapability_Forbidden(t *testing.T) {
	server := newTestServer(t)
	seedDirectory(t, server.URL)
	dayURL := server.URL + "/api/days/2026-03-02"

	resp, _ := doJSON(t, http.MethodPost, dayURL+"/reports", map[string]any{
		"officer_id": "off-a",
		"entries":    []map[string]any{{"employee_id": "emp-1"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, dayURL+"/approve", map[string]any{"actor_id": "off-a"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_ApproveEmptyDay_BadRequest(t *testing.T) {
	server := newTestServer(t)
	seedDirectory(t, server.URL)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/days/2026-03-02/approve",
		map[string]any{"actor_id": "mgr-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CancelUnknownAbsence_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodDelete, server.URL+"/api/absences/abs-404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CancelAbsence_NoContent(t *testing.T) {
	server := newTestServer(t)
	seedDirectory(t, server.URL)

	resp, report := doJSON(t, http.MethodPost, server.URL+"/api/days/2026-03-02/reports", map[string]any{
		"officer_id": "off-a",
		"entries":    []map[string]any{{"employee_id": "emp-1"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	absences := report["absences"].([]any)
	id := absences[0].(map[string]any)["id"].(string)

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/absences/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// =============================================================================
// SEED ENDPOINT
// =============================================================================

func TestAPI_SeedDuplicateDay(t *testing.T) {
	server := newTestServer(t)

	resp, result := doJSON(t, http.MethodPost, server.URL+"/api/seed", map[string]any{
		"seed_id": "duplicate-day",
		"date":    "2026-03-02",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, result["reports"])

	resp, view := doJSON(t, http.MethodGet, server.URL+"/api/days/2026-03-02", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, view["duplicates"], 1)
}

func TestAPI_SeedUnknownID_BadRequest(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/seed", map[string]any{"seed_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Healthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
