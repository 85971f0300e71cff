// internal/services/recommendation_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGroupRecommendationFallback(t *testing.T) {
	groupSvc, db := newTestGroupService(t)
	svc := NewRecommendationService(newTestConfig(), groupSvc)

	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	_, err := groupSvc.JoinGroup(group.ID, creator.ID, 50)
	require.NoError(t, err)

	// No API key configured: the deterministic fallback answers.
	rec, err := svc.BuildGroupRecommendation(group.ID, "")
	require.NoError(t, err)

	assert.Equal(t, group.ID, rec.GroupID)
	assert.Equal(t, "fallback", rec.Source)
	assert.Contains(t, rec.RecommendedPackaging, product.Name)
	assert.Contains(t, rec.RecommendedPackaging, product.Material)
	assert.NotEmpty(t, rec.Tradeoffs)
	assert.Contains(t, rec.SustainabilityReport, "kg plastic")
	assert.Contains(t, rec.SustainabilityReport, "kg CO2")
}

func TestBuildGroupRecommendationGroupNotFound(t *testing.T) {
	groupSvc, _ := newTestGroupService(t)
	svc := NewRecommendationService(newTestConfig(), groupSvc)

	_, err := svc.BuildGroupRecommendation(uuid.New(), "")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestBuildPromptIncludesConstraints(t *testing.T) {
	groupSvc, db := newTestGroupService(t)
	svc := NewRecommendationService(newTestConfig(), groupSvc)

	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	detail, err := groupSvc.GetGroupDetail(group.ID)
	require.NoError(t, err)
	impact, err := groupSvc.GetGroupImpact(group.ID)
	require.NoError(t, err)

	prompt := svc.buildPrompt(detail, impact, "freezer-safe only")
	assert.Contains(t, prompt, "Constraints: freezer-safe only")
	assert.Contains(t, prompt, "Product name: "+product.Name)

	prompt = svc.buildPrompt(detail, impact, "")
	assert.Contains(t, prompt, "No extra constraints provided.")
}
