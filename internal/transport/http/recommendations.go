package http

import (
	"encoding/json"
	"log"
	"net/http"

	"ecoquiz-service/internal/app"
	"github.com/go-playground/validator/v10"
)

// fallbackRecommendations is returned whenever the upstream model cannot be
// reached, so the caller never receives zero recommendations.
var fallbackRecommendations = []string{
	"Try our Science & Nature quiz to explore fascinating facts about our planet and ecosystem!",
	"Challenge yourself with Geography questions to discover amazing places around the world.",
	"Test your General Knowledge with fun facts that will broaden your learning horizons.",
}

// RecommendationsHandler proxies an age to the language-model API and returns
// up to three quiz recommendations.
type RecommendationsHandler struct {
	service  *app.QuizService
	validate *validator.Validate
}

func NewRecommendationsHandler(service *app.QuizService) *RecommendationsHandler {
	return &RecommendationsHandler{
		service:  service,
		validate: validator.New(),
	}
}

type recommendationRequest struct {
	Age int `json:"age" validate:"required,gte=1,lte=120"`
}

type recommendationResponse struct {
	Recommendations []string `json:"recommendations"`
	Age             int      `json:"age"`
}

type recommendationError struct {
	Error           string   `json:"error"`
	Recommendations []string `json:"recommendations"`
}

func (h *RecommendationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		// CORS preflight: headers only, no body.
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		writeRecommendationError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *RecommendationsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRecommendationError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeRecommendationError(w, http.StatusBadRequest, "age must be between 1 and 120")
		return
	}

	set, err := h.service.Recommendations(r.Context(), req.Age)
	if err != nil {
		log.Printf("recommendations for age %d: %v", req.Age, err)
		writeRecommendationError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, recommendationResponse{
		Recommendations: set.Recommendations,
		Age:             set.Age,
	})
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

func writeRecommendationError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, recommendationError{
		Error:           message,
		Recommendations: fallbackRecommendations,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
