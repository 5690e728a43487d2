package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hagglehub/negotiation-api/internal/domain"
	"github.com/hagglehub/negotiation-api/internal/extract"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"github.com/hagglehub/negotiation-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newMessageService(db *gorm.DB) *service.MessageService {
	return service.NewMessageService(
		repository.NewMessageRepository(db),
		repository.NewDealRepository(db),
		repository.NewDealerRepository(db),
		repository.NewVehicleRepository(db),
		extract.NewEngine(),
		zap.NewNop(),
	)
}

func TestMessageService_Create_ExplicitDeal(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, nil)

	dto, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealID:    &deal.ID,
		Content:   "We can do $45,500 out the door if you come in today.",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)

	assert.Equal(t, deal.ID, dto.DealID)
	assert.Equal(t, deal.DealerID, dto.DealerID)
	assert.Equal(t, domain.MessageChannelApp, dto.Channel)
	assert.False(t, dto.IsRead)

	// Offer detection runs once at creation time.
	assert.True(t, dto.ContainsOffer)
	require.NotNil(t, dto.ExtractedPrice)
	assert.Equal(t, 45500.0, *dto.ExtractedPrice)

	// Inbound traffic refreshes the deal's contact date.
	var fresh domain.Deal
	require.NoError(t, db.First(&fresh, "id = ?", deal.ID).Error)
	assert.NotNil(t, fresh.LastContactDate)
}

func TestMessageService_Create_OutboundIsRead(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db)

	deal := createTestDeal(t, db, nil)

	dto, err := svc.Create(context.Background(), testUserID, &domain.CreateMessageRequest{
		DealID:    &deal.ID,
		Content:   "Thanks, I'll think it over.",
		Direction: domain.MessageDirectionOutbound,
		Channel:   domain.MessageChannelEmail,
	})
	require.NoError(t, err)

	assert.True(t, dto.IsRead)
	assert.Equal(t, domain.MessageChannelEmail, dto.Channel)
	assert.False(t, dto.ContainsOffer)
	assert.Nil(t, dto.ExtractedPrice)
}

func TestMessageService_Create_DealerRoutesToActiveDeal(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, nil)

	dto, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealerID:  &deal.DealerID,
		Content:   "Following up on your visit.",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)
	assert.Equal(t, deal.ID, dto.DealID)
	assert.Equal(t, deal.DealerID, dto.DealerID)
}

func TestMessageService_Create_DealerWithoutActiveDealUsesFallback(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	// Only deal with this dealer is already closed out.
	deal := createTestDeal(t, db, func(d *domain.Deal) {
		d.Status = domain.DealStatusCompleted
	})

	dto, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealerID:  &deal.DealerID,
		Content:   "Our end of month pricing just dropped.",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)

	assert.NotEqual(t, deal.ID, dto.DealID)
	// The dealer attribution is kept even though the message lands on
	// the fallback deal.
	assert.Equal(t, deal.DealerID, dto.DealerID)

	var holding domain.Deal
	require.NoError(t, db.First(&holding, "id = ?", dto.DealID).Error)
	assert.True(t, holding.IsFallback)
}

func TestMessageService_Create_NoIDsCreatesGeneralInbox(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	dto, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		Content:   "Hi, are you still looking for a truck?",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)

	var dealer domain.Dealer
	require.NoError(t, db.First(&dealer, "id = ?", dto.DealerID).Error)
	assert.Equal(t, domain.FallbackDealerName, dealer.Name)
	assert.True(t, dealer.IsFallback)

	var deal domain.Deal
	require.NoError(t, db.First(&deal, "id = ?", dto.DealID).Error)
	assert.True(t, deal.IsFallback)

	var vehicle domain.Vehicle
	require.NoError(t, db.First(&vehicle, "id = ?", deal.VehicleID).Error)
	assert.Equal(t, "Unknown", vehicle.Make)
	assert.Equal(t, "Vehicle", vehicle.Model)

	// A second unmatched message reuses the same holding deal.
	dto2, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		Content:   "Just checking in again.",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)
	assert.Equal(t, dto.DealID, dto2.DealID)
}

func TestMessageService_GetThread(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, nil)
	other := createTestDeal(t, db, nil)

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
			DealID:    &deal.ID,
			Content:   content,
			Direction: domain.MessageDirectionInbound,
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealID:    &other.ID,
		Content:   "unrelated",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)

	thread, err := svc.GetThread(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "first", thread[0].Content)
	assert.Equal(t, "third", thread[2].Content)
}

func TestMessageService_MarkReadAndCountUnread(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, nil)

	first, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealID:    &deal.ID,
		Content:   "inbound one",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealID:    &deal.ID,
		Content:   "inbound two",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealID:    &deal.ID,
		Content:   "outbound reply",
		Direction: domain.MessageDirectionOutbound,
	})
	require.NoError(t, err)

	count, err := svc.CountUnread(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(ctx, first.ID))

	count, err = svc.CountUnread(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New()), service.ErrNotFound)
}

func TestMessageService_List_Filters(t *testing.T) {
	db := setupTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	deal := createTestDeal(t, db, nil)
	other := createTestDeal(t, db, nil)

	_, err := svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealID:    &deal.ID,
		Content:   "inbound on deal",
		Direction: domain.MessageDirectionInbound,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testUserID, &domain.CreateMessageRequest{
		DealID:    &other.ID,
		Content:   "outbound on other",
		Direction: domain.MessageDirectionOutbound,
	})
	require.NoError(t, err)

	userID := testUserID
	inbound := domain.MessageDirectionInbound
	page, err := svc.List(ctx, 1, 20, &repository.MessageFilters{
		UserID:    &userID,
		Direction: &inbound,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = svc.List(ctx, 1, 20, &repository.MessageFilters{
		UserID: &userID,
		DealID: &deal.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
