package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NewClient builds a gateway client for the AI service at baseURL. token
// may be nil for a client that only ever makes anonymous calls.
func NewClient(baseURL string, token TokenFunc) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   token,
	}
}

// SetHTTPClient swaps the underlying transport, used by tests to simulate
// network failures.
func (c *Client) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
		return
	}
	c.http = client
}

// post makes a single attempt against endpoint and normalizes every
// failure mode into the standard response shape. It never returns an
// error: network failures, non-2xx statuses and malformed bodies all
// settle to Success=false with the reason in Error.
func (c *Client) post(ctx context.Context, endpoint string, req *Request) *Response {
	if req.UserTier == "" {
		req.UserTier = TierFree
	}

	body, err := json.Marshal(req)
	if err != nil {
		return failureResponse(req.ServiceType, fmt.Sprintf("could not encode request: %s", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return failureResponse(req.ServiceType, fmt.Sprintf("could not create request: %s", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != nil {
		if token := c.token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return failureResponse(req.ServiceType, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return failureResponse(req.ServiceType, fmt.Sprintf("could not read response: %s", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureResponse(req.ServiceType, fmt.Sprintf("unexpected status: %d", resp.StatusCode))
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return failureResponse(req.ServiceType, fmt.Sprintf("could not decode response: %s", err))
	}

	return &out
}

func failureResponse(serviceType, message string) *Response {
	if message == "" {
		message = "unknown error occurred"
	}

	return &Response{
		Success:        false,
		Error:          message,
		ProcessingTime: 0,
		ServiceType:    serviceType,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// Process is the generic entry point for any service type.
func (c *Client) Process(ctx context.Context, serviceType, inputData string, tier Tier, options map[string]any) *Response {
	return c.post(ctx, "/api/ai/process", &Request{
		ServiceType: serviceType,
		InputData:   inputData,
		UserTier:    tier,
		Options:     options,
	})
}

// Research runs the vertical's researcher.
func (c *Client) Research(ctx context.Context, vertical Vertical, inputData string, tier Tier) *Response {
	return c.post(ctx, vertical.researchPath(), &Request{
		ServiceType: vertical.researchServiceType(),
		InputData:   inputData,
		UserTier:    tier,
	})
}

// Plan runs the vertical's planner. researchData, when present, is carried
// in options.research_data so the planner can build on a prior research
// result.
func (c *Client) Plan(ctx context.Context, vertical Vertical, inputData string, tier Tier, researchData any) *Response {
	return c.post(ctx, vertical.planPath(), &Request{
		ServiceType: vertical.planServiceType(),
		InputData:   inputData,
		UserTier:    tier,
		Options:     map[string]any{"research_data": researchData},
	})
}

func (c *Client) VacationResearch(ctx context.Context, inputData string, tier Tier) *Response {
	return c.Research(ctx, VerticalVacation, inputData, tier)
}

func (c *Client) EducationResearch(ctx context.Context, inputData string, tier Tier) *Response {
	return c.Research(ctx, VerticalEducation, inputData, tier)
}

func (c *Client) InsuranceResearch(ctx context.Context, inputData string, tier Tier) *Response {
	return c.Research(ctx, VerticalInsurance, inputData, tier)
}

func (c *Client) InvestmentResearch(ctx context.Context, inputData string, tier Tier) *Response {
	return c.Research(ctx, VerticalInvestment, inputData, tier)
}

func (c *Client) VideoShootResearch(ctx context.Context, inputData string, tier Tier) *Response {
	return c.Research(ctx, VerticalVideoShoot, inputData, tier)
}

func (c *Client) GeneralResearch(ctx context.Context, inputData string, tier Tier) *Response {
	return c.Research(ctx, VerticalGeneral, inputData, tier)
}

func (c *Client) VacationPlanning(ctx context.Context, inputData string, tier Tier, researchData any) *Response {
	return c.Plan(ctx, VerticalVacation, inputData, tier, researchData)
}

func (c *Client) EducationPlanning(ctx context.Context, inputData string, tier Tier, researchData any) *Response {
	return c.Plan(ctx, VerticalEducation, inputData, tier, researchData)
}

func (c *Client) InsurancePlanning(ctx context.Context, inputData string, tier Tier, researchData any) *Response {
	return c.Plan(ctx, VerticalInsurance, inputData, tier, researchData)
}

func (c *Client) InvestmentPlanning(ctx context.Context, inputData string, tier Tier, researchData any) *Response {
	return c.Plan(ctx, VerticalInvestment, inputData, tier, researchData)
}

func (c *Client) VideoShootPlanning(ctx context.Context, inputData string, tier Tier, researchData any) *Response {
	return c.Plan(ctx, VerticalVideoShoot, inputData, tier, researchData)
}

func (c *Client) GeneralPlanning(ctx context.Context, inputData string, tier Tier, researchData any) *Response {
	return c.Plan(ctx, VerticalGeneral, inputData, tier, researchData)
}

// Status fetches the remote service's status document. Any failure
// collapses to a service-unavailable document rather than an error.
func (c *Client) Status(ctx context.Context) map[string]any {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return map[string]any{"error": "service unavailable"}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return map[string]any{"error": "service unavailable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return map[string]any{"error": "service unavailable"}
	}

	var status map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&status); err != nil {
		return map[string]any{"error": "service unavailable"}
	}

	return status
}

// HealthCheck reports whether the remote service answers its health
// endpoint with a 2xx. Callers only need a go/no-go signal, so every
// failure is false, never an error.
func (c *Client) HealthCheck(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
