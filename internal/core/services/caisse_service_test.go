package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/core/services"
	"github.com/clinicore/treasury-backend/internal/dto"
)

func TestCaisseService(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.NewString()

	t.Run("CreateCaisse success", func(t *testing.T) {
		mockRepo := new(MockCaisseRepository)
		svc := services.NewCaisseService(mockRepo)

		req := dto.CreateCaisseRequest{Name: "Reception", Location: "Ground floor"}
		mockRepo.On("SaveCaisse", ctx, mock.MatchedBy(func(c domain.Caisse) bool {
			return c.Name == req.Name && c.Location == req.Location && c.IsActive
		})).Return(nil).Once()

		caisse, err := svc.CreateCaisse(ctx, req, actorID)

		assert.NoError(t, err)
		assert.NotNil(t, caisse)
		assert.NotEmpty(t, caisse.CaisseID)
		assert.Equal(t, actorID, caisse.CreatedBy)
		mockRepo.AssertExpectations(t)
	})

	t.Run("CreateCaisse duplicate name", func(t *testing.T) {
		mockRepo := new(MockCaisseRepository)
		svc := services.NewCaisseService(mockRepo)

		mockRepo.On("SaveCaisse", ctx, mock.AnythingOfType("domain.Caisse")).Return(apperrors.ErrDuplicate).Once()

		caisse, err := svc.CreateCaisse(ctx, dto.CreateCaisseRequest{Name: "Reception", Location: "Ground floor"}, actorID)

		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrDuplicate)
		assert.Nil(t, caisse)
	})

	t.Run("GetCaisseByID not found", func(t *testing.T) {
		mockRepo := new(MockCaisseRepository)
		svc := services.NewCaisseService(mockRepo)

		caisseID := uuid.NewString()
		mockRepo.On("FindCaisseByID", ctx, caisseID).Return(nil, apperrors.ErrNotFound).Once()

		caisse, err := svc.GetCaisseByID(ctx, caisseID)

		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Nil(t, caisse)
	})

	t.Run("ListCaisses", func(t *testing.T) {
		mockRepo := new(MockCaisseRepository)
		svc := services.NewCaisseService(mockRepo)

		expected := []domain.Caisse{
			{CaisseID: uuid.NewString(), Name: "Reception", IsActive: true},
			{CaisseID: uuid.NewString(), Name: "Pharmacy", IsActive: false},
		}
		mockRepo.On("ListCaisses", ctx).Return(expected, nil).Once()

		caisses, err := svc.ListCaisses(ctx)

		assert.NoError(t, err)
		assert.Len(t, caisses, 2)
	})

	t.Run("DeactivateCaisse", func(t *testing.T) {
		mockRepo := new(MockCaisseRepository)
		svc := services.NewCaisseService(mockRepo)

		caisseID := uuid.NewString()
		mockRepo.On("DeactivateCaisse", ctx, caisseID, actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		err := svc.DeactivateCaisse(ctx, caisseID, actorID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}
