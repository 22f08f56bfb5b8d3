package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangdm/risk-assessment-be/internal/api/handler"
	"github.com/quangdm/risk-assessment-be/internal/extraction"
	"github.com/quangdm/risk-assessment-be/internal/orchestrator"
	"github.com/quangdm/risk-assessment-be/internal/reporting"
	"github.com/quangdm/risk-assessment-be/internal/store"
)

type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

const registerJSON = `{
	"entries": [
		{
			"description": "Customer exports are stored unencrypted",
			"category": "data security",
			"likelihood": "high",
			"impact": "high",
			"mitigation": "Encrypt exports at rest"
		}
	]
}`

const auditJSON = `{
	"executive_summary": "One high severity risk identified.",
	"risk_overview": "Data security dominates the register.",
	"recommendations": ["Encrypt exports at rest"]
}`

func newTestServer(t *testing.T, completer extraction.Completer) (*gin.Engine, *orchestrator.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := store.NewMemory()
	adapter := extraction.NewAdapter(completer, logger)

	orch := orchestrator.New(&orchestrator.Config{
		Store:     m,
		Extractor: adapter,
		Logger:    logger,
	})

	r := SetupRouter(&handler.Dependencies{
		Logger:       logger,
		Orchestrator: orch,
		Facade:       reporting.NewFacade(m),
	})

	return r, orch
}

func doRequest(r *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func submitQuestionnaire(t *testing.T, r *gin.Engine) string {
	t.Helper()

	w := doRequest(r, http.MethodPost, "/api/v1/questionnaire/submit",
		`{"questionnaire_data": "We export customer data nightly without encryption.", "department": "IT", "submitted_by": "A. Lee"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp["status"])

	id, ok := resp["questionnaire_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}

func waitForTerminal(t *testing.T, r *gin.Engine, id string) string {
	t.Helper()

	var status string
	require.Eventually(t, func() bool {
		w := doRequest(r, http.MethodGet, "/api/v1/questionnaire/"+id+"/status", "")
		if w.Code != http.StatusOK {
			return false
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			return false
		}
		status, _ = resp["status"].(string)
		return status == "completed" || status == "failed"
	}, 5*time.Second, 10*time.Millisecond)

	return status
}

func TestSubmitValidation(t *testing.T) {
	r, _ := newTestServer(t, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return registerJSON, nil
	}))

	w := doRequest(r, http.MethodPost, "/api/v1/questionnaire/submit", `{"department": "IT"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/questionnaire/submit", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAndPollToCompletion(t *testing.T) {
	calls := 0
	r, orch := newTestServer(t, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		calls++
		if calls == 1 {
			return registerJSON, nil
		}
		return auditJSON, nil
	}))
	defer orch.Close()

	id := submitQuestionnaire(t, r)
	status := waitForTerminal(t, r, id)
	require.Equal(t, "completed", status)

	w := doRequest(r, http.MethodGet, "/api/v1/reports/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		QuestionnaireID string `json:"questionnaire_id"`
		Status          string `json:"status"`
		Report          struct {
			Entries []struct {
				RiskID     int    `json:"risk_id"`
				Likelihood string `json:"likelihood"`
			} `json:"entries"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.QuestionnaireID)
	assert.Equal(t, "completed", resp.Status)
	require.Len(t, resp.Report.Entries, 1)
	assert.Equal(t, 1, resp.Report.Entries[0].RiskID)
	assert.Equal(t, "high", resp.Report.Entries[0].Likelihood)
}

func TestAuditReportEndpoint(t *testing.T) {
	calls := 0
	r, orch := newTestServer(t, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		calls++
		if calls == 1 {
			return registerJSON, nil
		}
		return auditJSON, nil
	}))
	defer orch.Close()

	id := submitQuestionnaire(t, r)
	require.Equal(t, "completed", waitForTerminal(t, r, id))

	// Audit generation runs after the completed transition; poll for it
	require.Eventually(t, func() bool {
		w := doRequest(r, http.MethodGet, "/api/v1/reports/"+id+"/audit-report", "")
		return w.Code == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	w := doRequest(r, http.MethodGet, "/api/v1/reports/"+id+"/audit-report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "One high severity risk identified.")
}

func TestExportEndpoints(t *testing.T) {
	r, orch := newTestServer(t, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return registerJSON, nil
	}))
	defer orch.Close()

	id := submitQuestionnaire(t, r)
	require.Equal(t, "completed", waitForTerminal(t, r, id))

	w := doRequest(r, http.MethodGet, "/api/v1/reports/"+id+"/export?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), id)
	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	assert.Len(t, lines, 2) // header + 1 entry

	w = doRequest(r, http.MethodGet, "/api/v1/reports/"+id+"/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"job_id":"`+id+`"`)

	w = doRequest(r, http.MethodGet, "/api/v1/reports/"+id+"/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFailedExtractionSurfacesOnReport(t *testing.T) {
	r, orch := newTestServer(t, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return `{"entries": "not a list"}`, nil
	}))
	defer orch.Close()

	id := submitQuestionnaire(t, r)
	require.Equal(t, "failed", waitForTerminal(t, r, id))

	w := doRequest(r, http.MethodGet, "/api/v1/reports/"+id, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReportNotReady(t *testing.T) {
	release := make(chan struct{})
	r, orch := newTestServer(t, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		<-release
		return registerJSON, nil
	}))

	id := submitQuestionnaire(t, r)

	w := doRequest(r, http.MethodGet, "/api/v1/reports/"+id, "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/reports/"+id+"/export?format=csv", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	close(release)
	orch.Close()
}

func TestNotFoundAndBadIDs(t *testing.T) {
	r, _ := newTestServer(t, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return registerJSON, nil
	}))

	missing := "3f2f1f6a-0a0f-4f6e-9a3e-000000000000"

	w := doRequest(r, http.MethodGet, "/api/v1/questionnaire/"+missing+"/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/reports/"+missing, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/questionnaire/not-a-uuid/status", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/reports/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestServer(t, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return registerJSON, nil
	}))

	w := doRequest(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
