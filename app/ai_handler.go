package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/automaatte/platform/internal/aiservice"
)

type processAIRequest struct {
	ServiceType string         `json:"service_type"`
	InputData   string         `json:"input_data"`
	Options     map[string]any `json:"options"`
}

func (app *application) processAIHandler(w http.ResponseWriter, r *http.Request) {
	var input processAIRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	tier := aiservice.ResolveTier(app.getUserContext(r))

	result := app.aiClient.Process(r.Context(), input.ServiceType, input.InputData, tier, input.Options)

	err = app.writeJSON(w, http.StatusOK, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type researchRequest struct {
	InputData string `json:"input_data"`
}

func (app *application) researchHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	vertical := aiservice.ParseVertical(params.ByName("vertical"))

	var input researchRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	tier := aiservice.ResolveTier(app.getUserContext(r))

	result := app.aiClient.Research(r.Context(), vertical, input.InputData, tier)

	err = app.writeJSON(w, http.StatusOK, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type planRequest struct {
	InputData    string `json:"input_data"`
	ResearchData any    `json:"research_data"`
}

func (app *application) planHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	vertical := aiservice.ParseVertical(params.ByName("vertical"))

	var input planRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	tier := aiservice.ResolveTier(app.getUserContext(r))

	result := app.aiClient.Plan(r.Context(), vertical, input.InputData, tier, input.ResearchData)

	err = app.writeJSON(w, http.StatusOK, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type researchAndPlanRequest struct {
	Vertical  string `json:"vertical"`
	InputData string `json:"input_data"`
}

func (app *application) researchAndPlanHandler(w http.ResponseWriter, r *http.Request) {
	var input researchAndPlanRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	vertical := aiservice.ParseVertical(input.Vertical)
	tier := aiservice.ResolveTier(app.getUserContext(r))

	result := app.aiClient.ResearchAndPlan(r.Context(), vertical, input.InputData, tier)

	err = app.writeJSON(w, http.StatusOK, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) aiStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := app.aiClient.Status(r.Context())
	healthy := app.aiClient.HealthCheck(r.Context())

	err := app.writeJSON(w, http.StatusOK, envelope{"status": status, "healthy": healthy}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
