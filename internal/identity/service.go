package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
)

// Service resolves the marketplace identity behind an authenticated user.
// A user without the profile for the side they are acting on is refused,
// not treated as missing data.
type Service interface {
	ResolveBuyer(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error)
	ResolveSeller(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
}

type service struct {
	repo Repository
}

// NewService builds an identity service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ResolveBuyer(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.repo.FindBuyerByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer profile required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer profile")
	}
	return profile, nil
}

func (s *service) ResolveSeller(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.repo.FindSellerByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller profile required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return profile, nil
}
