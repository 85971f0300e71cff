// internal/services/recommendation_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/greensupply/greensupply-backend/internal/config"
)

// RecommendationService produces packaging advice for a buying group. With
// a Gemini API key configured the advice comes from the model; otherwise a
// deterministic fallback is assembled from the group's own catalog and
// impact numbers, so the endpoint works with no external dependency at all.
type RecommendationService struct {
	config       *config.Config
	groupService *GroupService
	httpClient   *http.Client
}

type GroupRecommendation struct {
	GroupID              uuid.UUID `json:"group_id"`
	Source               string    `json:"source"`
	RecommendedPackaging string    `json:"recommended_packaging"`
	Tradeoffs            string    `json:"tradeoffs"`
	SustainabilityReport string    `json:"sustainability_report"`
}

func NewRecommendationService(cfg *config.Config, groupService *GroupService) *RecommendationService {
	return &RecommendationService{
		config:       cfg,
		groupService: groupService,
		httpClient:   &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *RecommendationService) BuildGroupRecommendation(groupID uuid.UUID, constraints string) (*GroupRecommendation, error) {
	detail, err := s.groupService.GetGroupDetail(groupID)
	if err != nil {
		return nil, err
	}

	impact, err := s.groupService.GetGroupImpact(groupID)
	if err != nil {
		return nil, err
	}

	if rec := s.callGemini(s.buildPrompt(detail, impact, constraints)); rec != nil {
		rec.GroupID = groupID
		rec.Source = "gemini"
		return rec, nil
	}

	rec := s.fallbackRecommendation(detail, impact)
	rec.GroupID = groupID
	rec.Source = "fallback"
	return rec, nil
}

func (s *RecommendationService) fallbackRecommendation(detail *GroupDetail, impact *GroupImpact) *GroupRecommendation {
	product := detail.Product
	return &GroupRecommendation{
		RecommendedPackaging: fmt.Sprintf(
			"Use %s %s options such as %s to meet compostable packaging goals while reducing unit cost in bulk groups.",
			product.Material, product.Category, product.Name),
		Tradeoffs: "Compostable materials often need proper collection/compost streams and may have " +
			"higher retail pricing outside bulk purchase windows.",
		SustainabilityReport: fmt.Sprintf(
			"This group currently avoids about %.2f kg plastic and %.2f kg CO2, while reducing about %d "+
				"delivery trips and saving roughly %.2f miles.",
			impact.EstimatedPlasticAvoidedKg, impact.EstimatedCO2SavedKg,
			impact.DeliveryTripsReduced, impact.DeliveryMilesSaved),
	}
}

func (s *RecommendationService) buildPrompt(detail *GroupDetail, impact *GroupImpact, constraints string) string {
	if constraints == "" {
		constraints = "No extra constraints provided."
	}

	var b strings.Builder
	b.WriteString("You are sustainability advisor for small food businesses.\n")
	b.WriteString("Return valid JSON with keys: recommended_packaging, tradeoffs, sustainability_report.\n")
	b.WriteString("Keep each value concise and practical.\n\n")
	fmt.Fprintf(&b, "Product name: %s\n", detail.Product.Name)
	fmt.Fprintf(&b, "Category: %s\n", detail.Product.Category)
	fmt.Fprintf(&b, "Material: %s\n", detail.Product.Material)
	fmt.Fprintf(&b, "Certifications: %s\n", strings.Join(detail.Product.Certifications, ", "))
	fmt.Fprintf(&b, "Current units: %d\n", detail.CurrentUnits)
	fmt.Fprintf(&b, "Target units: %d\n", detail.TargetUnits)
	fmt.Fprintf(&b, "Estimated savings USD: %.2f\n", impact.EstimatedSavingsUSD)
	fmt.Fprintf(&b, "Estimated CO2 saved kg: %.2f\n", impact.EstimatedCO2SavedKg)
	fmt.Fprintf(&b, "Estimated plastic avoided kg: %.2f\n", impact.EstimatedPlasticAvoidedKg)
	fmt.Fprintf(&b, "Delivery miles saved: %.2f\n", impact.DeliveryMilesSaved)
	fmt.Fprintf(&b, "Constraints: %s\n", constraints)
	return b.String()
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// callGemini returns nil on any failure; the caller falls back to the
// deterministic recommendation.
func (s *RecommendationService) callGemini(prompt string) *GroupRecommendation {
	if s.config.AI.GeminiAPIKey == "" {
		return nil
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		s.config.AI.GeminiModel, s.config.AI.GeminiAPIKey)

	payload := map[string]interface{}{
		"contents":         []map[string]interface{}{{"parts": []map[string]string{{"text": prompt}}}},
		"generationConfig": map[string]interface{}{"temperature": 0.2},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	resp, err := s.httpClient.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		logrus.WithError(err).Warn("Gemini request failed, using fallback recommendation")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.StatusCode).Warn("Gemini returned non-OK status, using fallback recommendation")
		return nil
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil
	}
	if len(parsed.Candidates) == 0 {
		return nil
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	raw := strings.TrimSpace(text.String())
	if raw == "" {
		return nil
	}

	var structured struct {
		RecommendedPackaging string `json:"recommended_packaging"`
		Tradeoffs            string `json:"tradeoffs"`
		SustainabilityReport string `json:"sustainability_report"`
	}
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		// Unstructured model output still carries the recommendation.
		return &GroupRecommendation{
			RecommendedPackaging: raw,
			Tradeoffs:            "Review composting collection and material compliance requirements.",
			SustainabilityReport: "AI returned unstructured output; verify details against dashboard metrics.",
		}
	}
	if structured.RecommendedPackaging == "" || structured.Tradeoffs == "" || structured.SustainabilityReport == "" {
		return nil
	}

	return &GroupRecommendation{
		RecommendedPackaging: structured.RecommendedPackaging,
		Tradeoffs:            structured.Tradeoffs,
		SustainabilityReport: structured.SustainabilityReport,
	}
}
