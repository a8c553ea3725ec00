package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openitup/storycode/internal/engine"
	"github.com/openitup/storycode/internal/httpapi/response"
	"github.com/openitup/storycode/internal/prompts"
)

// StoryHandler serves the original single-purpose /generate-story contract.
// Pipeline errors and blank code are reported inside the story text with
// status 200, which is what the bundled frontend expects.
type StoryHandler struct {
	pipeline Pipeline
}

func NewStoryHandler(p Pipeline) *StoryHandler {
	return &StoryHandler{pipeline: p}
}

type storyRequest struct {
	Code     string `json:"code"`
	Style    string `json:"style"`
	Language string `json:"language"`
}

type storyResponse struct {
	Story string `json:"story"`
}

func (h *StoryHandler) GenerateStory(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.pipeline.Run(c.Request.Context(), engine.Request{
		Feature:  prompts.FeatureStory,
		Input:    req.Code,
		Language: req.Language,
		Params:   map[string]string{prompts.ParamStyle: req.Style},
	})
	if err != nil {
		response.RespondOK(c, storyResponse{Story: engine.DisplayError(err)})
		return
	}
	response.RespondOK(c, storyResponse{Story: res.Output.Display()})
}
