package application

import (
	"context"
	"fmt"
	"time"

	"shopsync-core/internal/domain"
	"shopsync-core/internal/ports"

	"github.com/rs/zerolog"
)

// SessionService owns the durable per-shop credential and scope
// record: upserted on install and re-auth, soft-deactivated on
// uninstall. Lookups only ever return active shops.
type SessionService struct {
	shops  ports.ShopRepository
	logger zerolog.Logger
}

func NewSessionService(shops ports.ShopRepository, logger zerolog.Logger) *SessionService {
	return &SessionService{shops: shops, logger: logger}
}

// StoreShopInput carries the credentials and metadata captured during
// install or re-auth.
type StoreShopInput struct {
	Domain      string
	AccessToken string
	Scopes      []string
	ShopifyID   int64
	Currency    string
	Timezone    string
}

// Store upserts the shop keyed by domain. Re-installation always
// reactivates: is_active is set and any prior uninstall timestamp is
// cleared.
func (s *SessionService) Store(ctx context.Context, in StoreShopInput) (*domain.Shop, error) {
	if in.Domain == "" {
		return nil, fmt.Errorf("shop domain is required")
	}
	if in.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	shop, err := s.shops.Upsert(ctx, &domain.Shop{
		Domain:      in.Domain,
		AccessToken: in.AccessToken,
		Scopes:      in.Scopes,
		ShopifyID:   in.ShopifyID,
		Currency:    in.Currency,
		Timezone:    in.Timezone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store shop: %w", err)
	}

	s.logger.Info().
		Str("shop", shop.Domain).
		Strs("scopes", shop.Scopes).
		Msg("Stored shop credentials")
	return shop, nil
}

// MarkUninstalled soft-deactivates the shop; the record and all
// synced data are retained.
func (s *SessionService) MarkUninstalled(ctx context.Context, shopDomain string) error {
	if err := s.shops.MarkUninstalled(ctx, shopDomain); err != nil {
		return err
	}
	s.logger.Info().Str("shop", shopDomain).Msg("Marked shop uninstalled")
	return nil
}

func (s *SessionService) ByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	return s.shops.ByDomain(ctx, shopDomain)
}

func (s *SessionService) ByID(ctx context.Context, id string) (*domain.Shop, error) {
	return s.shops.ByID(ctx, id)
}

func (s *SessionService) UpdateLastSync(ctx context.Context, shopID string, at time.Time) error {
	return s.shops.UpdateLastSync(ctx, shopID, at)
}
