package aiservice

import "context"

// ResearchAndPlanResult carries both raw responses of the combined
// workflow so the caller can surface either half.
type ResearchAndPlanResult struct {
	Research *Response `json:"research"`
	Plan     *Response `json:"plan"`
}

// ResearchAndPlan runs the vertical's researcher and then its planner with
// the research result threaded into the planning options. The two calls
// are strictly sequential because the second depends on the first's
// output.
func (c *Client) ResearchAndPlan(ctx context.Context, vertical Vertical, inputData string, tier Tier) *ResearchAndPlanResult {
	research := c.Research(ctx, vertical, inputData, tier)
	plan := c.Plan(ctx, vertical, inputData, tier, research.Data)

	return &ResearchAndPlanResult{
		Research: research,
		Plan:     plan,
	}
}
