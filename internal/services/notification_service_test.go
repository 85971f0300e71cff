// internal/services/notification_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greensupply/greensupply-backend/internal/cache"
	"github.com/greensupply/greensupply-backend/internal/models"
)

// SMTP is unconfigured in tests, so sendEmail only logs; these tests cover
// recipient resolution and template rendering up to that point.

func TestSendGroupApprovalRequestEmail(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	notifier := NewNotificationService(db, cfg)
	svc := NewGroupService(db, cfg, NewRouteService(cfg), notifier, cache.New(cfg.Redis))

	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	// Fill the group below the participant floor.
	detail, err := svc.JoinGroup(group.ID, creator.ID, 100)
	require.NoError(t, err)
	require.Equal(t, models.GroupStatusCapacityReached, detail.Status)

	assert.NoError(t, svc.sendApprovalRequest(group.ID))
}

func TestSendGroupApprovalRequestEmailMissingSupplierEmail(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	notifier := NewNotificationService(db, cfg)
	svc := NewGroupService(db, cfg, NewRouteService(cfg), notifier, cache.New(cfg.Redis))

	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	require.NoError(t, db.Model(supplier).Update("email", "").Error)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	_, err := svc.JoinGroup(group.ID, creator.ID, 100)
	require.NoError(t, err)

	assert.Error(t, svc.sendApprovalRequest(group.ID))
}

func TestSendGroupConfirmedEmailsCollectsParticipants(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	notifier := NewNotificationService(db, cfg)
	svc := NewGroupService(db, cfg, NewRouteService(cfg), notifier, cache.New(cfg.Redis))

	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 2)

	_, err := svc.JoinGroup(group.ID, creator.ID, 50)
	require.NoError(t, err)
	detail, err := svc.JoinGroup(group.ID, seedBusiness(t, db, region.ID, "cafe-two").ID, 50)
	require.NoError(t, err)
	require.Equal(t, models.GroupStatusConfirmed, detail.Status)

	recipients, err := notifier.participantEmails(group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cafe-one@example.com", "cafe-two@example.com"}, recipients)

	assert.NoError(t, notifier.SendGroupConfirmedEmails(detail))
}
