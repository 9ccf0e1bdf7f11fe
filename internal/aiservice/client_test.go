package aiservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// failingDoer simulates a dead network: every request errors.
type failingDoer struct{}

func (d *failingDoer) Do(req *http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

// recordingDoer captures every outbound request and answers each with the
// next canned body.
type recordingDoer struct {
	requests []*http.Request
	bodies   [][]byte
	replies  []string
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	d.requests = append(d.requests, req)
	d.bodies = append(d.bodies, body)

	reply := `{"success": true}`
	if len(d.replies) >= len(d.requests) {
		reply = d.replies[len(d.requests)-1]
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(reply)),
	}, nil
}

func TestClientFailureContract(t *testing.T) {
	client := NewClient("http://ai.internal", nil)
	client.SetHTTPClient(&failingDoer{})

	ctx := context.Background()

	tests := []struct {
		name                string
		call                func() *Response
		expectedServiceType string
	}{
		{
			name:                "Process",
			call:                func() *Response { return client.Process(ctx, "vacation-research", "input", TierFree, nil) },
			expectedServiceType: "vacation-research",
		},
		{
			name:                "VacationResearch",
			call:                func() *Response { return client.VacationResearch(ctx, "input", TierFree) },
			expectedServiceType: "vacation-research",
		},
		{
			name:                "EducationResearch",
			call:                func() *Response { return client.EducationResearch(ctx, "input", TierCore) },
			expectedServiceType: "education-research",
		},
		{
			name:                "InvestmentPlanning",
			call:                func() *Response { return client.InvestmentPlanning(ctx, "input", TierSpecial, nil) },
			expectedServiceType: "money-investment-planning",
		},
		{
			name:                "GeneralPlanning",
			call:                func() *Response { return client.GeneralPlanning(ctx, "input", TierFree, nil) },
			expectedServiceType: "general-planning",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.call()

			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, float64(0), resp.ProcessingTime)
			assert.Equal(t, tt.expectedServiceType, resp.ServiceType)

			_, err := time.Parse(time.RFC3339, resp.Timestamp)
			assert.NoError(t, err)
		})
	}
}

func TestClientNon2xxIsFailure(t *testing.T) {
	client := NewClient("http://ai.internal", nil)
	client.SetHTTPClient(&statusDoer{status: http.StatusBadGateway})

	resp := client.GeneralResearch(context.Background(), "input", TierFree)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "502")
}

type statusDoer struct {
	status int
}

func (d *statusDoer) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader("bad gateway")),
	}, nil
}

func TestClientForwardsAuthorization(t *testing.T) {
	doer := &recordingDoer{}
	client := NewClient("http://ai.internal/", func(ctx context.Context) string { return "session-token" })
	client.SetHTTPClient(doer)

	client.Process(context.Background(), "general-research", "input", TierFree, nil)

	assert.Len(t, doer.requests, 1)
	assert.Equal(t, "Bearer session-token", doer.requests[0].Header.Get("Authorization"))
	assert.Equal(t, "http://ai.internal/api/ai/process", doer.requests[0].URL.String())
}

func TestClientDefaultsTierToFree(t *testing.T) {
	doer := &recordingDoer{}
	client := NewClient("http://ai.internal", nil)
	client.SetHTTPClient(doer)

	client.Process(context.Background(), "general-research", "input", "", nil)

	var req Request
	assert.NoError(t, json.Unmarshal(doer.bodies[0], &req))
	assert.Equal(t, TierFree, req.UserTier)
}

func TestResearchAndPlan(t *testing.T) {
	doer := &recordingDoer{
		replies: []string{
			`{"success": true, "data": "research findings", "service_type": "vacation-research"}`,
			`{"success": true, "data": "the plan", "service_type": "vacation-planning"}`,
		},
	}
	client := NewClient("http://ai.internal", nil)
	client.SetHTTPClient(doer)

	result := client.ResearchAndPlan(context.Background(), VerticalVacation, "3 days in Lisbon", TierCore)

	assert.True(t, result.Research.Success)
	assert.True(t, result.Plan.Success)

	// Researcher first, planner second, with the research data threaded in.
	assert.Len(t, doer.requests, 2)
	assert.Equal(t, "/api/researchers/vacation", doer.requests[0].URL.Path)
	assert.Equal(t, "/api/planners/vacation", doer.requests[1].URL.Path)

	var planReq Request
	assert.NoError(t, json.Unmarshal(doer.bodies[1], &planReq))
	assert.Equal(t, "research findings", planReq.Options["research_data"])
}

func TestStatus(t *testing.T) {
	t.Run("failure collapses to service unavailable", func(t *testing.T) {
		client := NewClient("http://ai.internal", nil)
		client.SetHTTPClient(&failingDoer{})

		status := client.Status(context.Background())
		assert.Equal(t, map[string]any{"error": "service unavailable"}, status)
	})

	t.Run("success returns the remote document", func(t *testing.T) {
		client := NewClient("http://ai.internal", nil)
		client.SetHTTPClient(&statusBodyDoer{body: `{"uptime": 42}`})

		status := client.Status(context.Background())
		assert.Equal(t, map[string]any{"uptime": float64(42)}, status)
	})
}

type statusBodyDoer struct {
	body string
}

func (d *statusBodyDoer) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		doer     httpDoer
		expected bool
	}{
		{name: "healthy", doer: &statusDoer{status: http.StatusOK}, expected: true},
		{name: "server error", doer: &statusDoer{status: http.StatusInternalServerError}, expected: false},
		{name: "unreachable", doer: &failingDoer{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient("http://ai.internal", nil)
			client.SetHTTPClient(tt.doer)

			assert.Equal(t, tt.expected, client.HealthCheck(context.Background()))
		})
	}
}

func TestFailureResponseDefaultMessage(t *testing.T) {
	resp := failureResponse("general-research", "")

	assert.Equal(t, "unknown error occurred", resp.Error)
	assert.Equal(t, float64(0), resp.ProcessingTime)
}
