package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openitup/storycode/internal/engine"
	"github.com/openitup/storycode/internal/httpapi/response"
	"github.com/openitup/storycode/internal/prompts"
)

type FeatureHandler struct {
	pipeline Pipeline
}

func NewFeatureHandler(p Pipeline) *FeatureHandler {
	return &FeatureHandler{pipeline: p}
}

type featureList struct {
	Features  []engine.Feature `json:"features"`
	Languages []string         `json:"languages"`
}

type runRequest struct {
	Input    string            `json:"input"`
	Language string            `json:"language"`
	Params   map[string]string `json:"params"`
}

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	response.RespondOK(c, featureList{
		Features:  engine.Catalog(),
		Languages: h.pipeline.Languages(),
	})
}

func (h *FeatureHandler) RunFeature(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.pipeline.Run(c.Request.Context(), engine.Request{
		Feature:  prompts.Feature(c.Param("feature")),
		Input:    req.Input,
		Language: req.Language,
		Params:   req.Params,
	})
	if err != nil {
		status, code := statusFor(err)
		response.RespondError(c, status, code, errors.New(engine.DisplayError(err)))
		return
	}
	response.RespondOK(c, res)
}

func (h *FeatureHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissing("code"))
		return
	}
	s, err := h.pipeline.Analyze(req.Language, req.Code)
	if err != nil {
		status, code := statusFor(err)
		response.RespondError(c, status, code, err)
		return
	}
	response.RespondOK(c, s)
}

func errMissing(field string) error {
	return fmt.Errorf("%s is required", field)
}
