package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/repository"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// AccountService implements the signed-in shopper's profile, address book
// and order history.
type AccountService struct {
	profiles  repository.ProfileRepository
	addresses repository.AddressRepository
	orders    repository.OrderRepository
	logger    *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(profiles repository.ProfileRepository, addresses repository.AddressRepository, orders repository.OrderRepository, logger *slog.Logger) *AccountService {
	return &AccountService{
		profiles:  profiles,
		addresses: addresses,
		orders:    orders,
		logger:    logger,
	}
}

// UpdateProfileInput holds the parameters for updating a profile. Nil fields
// are left unchanged.
type UpdateProfileInput struct {
	FirstName      *string
	LastName       *string
	Phone          *string
	MarketingOptIn *bool
}

// AddressInput holds the parameters for creating or updating an address.
type AddressInput struct {
	FullName   string
	Line1      string
	Line2      string
	Suburb     string
	City       string
	Province   string
	PostalCode string
	Country    string
	Phone      string
}

// GetProfile returns the shopper's profile, seeding it from the token claims
// on first sight.
func (s *AccountService) GetProfile(ctx context.Context, userID, email string) (*domain.Profile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	now := time.Now().UTC()
	profile = &domain.Profile{
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("seed profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile seeded", slog.String("user_id", userID))
	return profile, nil
}

// UpdateProfile applies partial changes to the shopper's profile.
func (s *AccountService) UpdateProfile(ctx context.Context, userID, email string, input *UpdateProfileInput) (*domain.Profile, error) {
	profile, err := s.GetProfile(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		profile.LastName = *input.LastName
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.MarketingOptIn != nil {
		profile.MarketingOptIn = *input.MarketingOptIn
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated", slog.String("user_id", userID))
	return profile, nil
}

// ListAddresses returns the shopper's address book, default first.
func (s *AccountService) ListAddresses(ctx context.Context, userID string) ([]*domain.Address, error) {
	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// AddAddress validates and stores a new address. The first address in the
// book becomes the default.
func (s *AccountService) AddAddress(ctx context.Context, userID string, input *AddressInput) (*domain.Address, error) {
	if err := validateAddressInput(input); err != nil {
		return nil, err
	}

	existing, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}

	now := time.Now().UTC()
	address := &domain.Address{
		ID:         uuid.New().String(),
		UserID:     userID,
		FullName:   input.FullName,
		Line1:      input.Line1,
		Line2:      input.Line2,
		Suburb:     input.Suburb,
		City:       input.City,
		Province:   input.Province,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		Phone:      input.Phone,
		IsDefault:  len(existing) == 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if address.Country == "" {
		address.Country = "ZA"
	}

	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	s.logger.InfoContext(ctx, "address added",
		slog.String("user_id", userID),
		slog.String("address_id", address.ID),
	)

	return address, nil
}

// UpdateAddress replaces the fields of an existing address.
func (s *AccountService) UpdateAddress(ctx context.Context, userID, id string, input *AddressInput) (*domain.Address, error) {
	if err := validateAddressInput(input); err != nil {
		return nil, err
	}

	address, err := s.addresses.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}

	address.FullName = input.FullName
	address.Line1 = input.Line1
	address.Line2 = input.Line2
	address.Suburb = input.Suburb
	address.City = input.City
	address.Province = input.Province
	address.PostalCode = input.PostalCode
	if input.Country != "" {
		address.Country = input.Country
	}
	address.Phone = input.Phone
	address.UpdatedAt = time.Now().UTC()

	if err := s.addresses.Update(ctx, address); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	return address, nil
}

// RemoveAddress deletes an address from the book.
func (s *AccountService) RemoveAddress(ctx context.Context, userID, id string) error {
	if err := s.addresses.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

// SetDefaultAddress marks the given address as the checkout default.
func (s *AccountService) SetDefaultAddress(ctx context.Context, userID, id string) error {
	if err := s.addresses.SetDefault(ctx, userID, id); err != nil {
		return fmt.Errorf("set default address: %w", err)
	}
	return nil
}

// ListOrders returns the shopper's order history, newest first.
func (s *AccountService) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, int64, error) {
	orders, total, err := s.orders.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func validateAddressInput(input *AddressInput) error {
	switch {
	case input.FullName == "":
		return apperrors.InvalidInput("full name is required")
	case input.Line1 == "":
		return apperrors.InvalidInput("address line 1 is required")
	case input.City == "":
		return apperrors.InvalidInput("city is required")
	case input.Province == "":
		return apperrors.InvalidInput("province is required")
	case input.PostalCode == "":
		return apperrors.InvalidInput("postal code is required")
	}
	return nil
}
