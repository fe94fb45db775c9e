package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("link not found")
	ErrExpired        = errors.New("link expired")
	ErrNoDestination  = errors.New("no destination url: provide a custom url or a product with a canonical url")
	ErrCodeExhausted  = errors.New("could not generate a unique short code")
	ErrHasConversions = errors.New("link has unpaid conversions and cannot be deleted")
)

const maxCodeAttempts = 5

type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	FindByShortCode(ctx context.Context, code string) (domain.Link, error)
	FindByID(ctx context.Context, id uint) (domain.Link, error)
	FindByPartner(ctx context.Context, partnerID uint) ([]domain.Link, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Product, error)
}

type ConversionRepository interface {
	CountUnpaidByLink(ctx context.Context, linkID uint) (int64, error)
}

type linkService struct {
	linkRepo       LinkRepository
	productRepo    ProductRepository
	conversionRepo ConversionRepository
	baseURL        string
}

func NewLinkService(linkRepo LinkRepository, productRepo ProductRepository, conversionRepo ConversionRepository, baseURL string) *linkService {
	return &linkService{
		linkRepo:       linkRepo,
		productRepo:    productRepo,
		conversionRepo: conversionRepo,
		baseURL:        baseURL,
	}
}

type CreateInput struct {
	PartnerID  uint
	ProductID  *uint
	CampaignID *uint
	CustomURL  string
	Name       string
	ExpiresAt  *time.Time
}

type CreatedLink struct {
	Link     domain.Link `json:"link"`
	ShortURL string      `json:"short_url"`
}

func (s *linkService) Create(ctx context.Context, input CreateInput) (CreatedLink, error) {
	destination := input.CustomURL
	if destination == "" && input.ProductID != nil {
		product, err := s.productRepo.FindByID(ctx, *input.ProductID)
		if err != nil {
			logger.Error("failed to resolve product for link", err)
			return CreatedLink{}, fmt.Errorf("failed to resolve product: %w", err)
		}
		destination = product.URL
	}

	if destination == "" {
		return CreatedLink{}, ErrNoDestination
	}

	link := domain.Link{
		PartnerID:      input.PartnerID,
		ProductID:      input.ProductID,
		CampaignID:     input.CampaignID,
		DestinationURL: destination,
		Name:           input.Name,
		Status:         domain.LinkStatusActive,
		ExpiresAt:      input.ExpiresAt,
	}

	// Retry on collision against the persisted set. The unique index on
	// short_code is the arbiter.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateShortCode()
		if err != nil {
			return CreatedLink{}, err
		}

		link.ShortCode = code
		err = s.linkRepo.Create(ctx, &link)
		if err == nil {
			return CreatedLink{Link: link, ShortURL: s.baseURL + "/go/" + code}, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("failed to create link", err)
			return CreatedLink{}, fmt.Errorf("failed to create link: %w", err)
		}

		logger.Warn("short code collision, retrying", "attempt", attempt+1)
	}

	return CreatedLink{}, ErrCodeExhausted
}

// Resolve looks up an active link by short code with its partner, product and
// campaign context preloaded for click recording.
func (s *linkService) Resolve(ctx context.Context, code string) (domain.Link, error) {
	link, err := s.linkRepo.FindByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Link{}, ErrNotFound
		}
		return domain.Link{}, fmt.Errorf("failed to resolve link: %w", err)
	}

	if link.Expired(time.Now()) || link.Status == domain.LinkStatusPaused {
		return domain.Link{}, ErrExpired
	}

	return link, nil
}

func (s *linkService) GetByPartner(ctx context.Context, partnerID uint) ([]domain.Link, error) {
	return s.linkRepo.FindByPartner(ctx, partnerID)
}

func (s *linkService) GetByID(ctx context.Context, id uint) (domain.Link, error) {
	link, err := s.linkRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Link{}, ErrNotFound
		}
		return domain.Link{}, err
	}

	return link, nil
}

func (s *linkService) UpdateStatus(ctx context.Context, id uint, status string) error {
	switch status {
	case domain.LinkStatusActive, domain.LinkStatusPaused, domain.LinkStatusExpired:
	default:
		return fmt.Errorf("invalid link status %q", status)
	}

	if err := s.linkRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

// Delete refuses to remove a link that still has unpaid conversions attached;
// those rows are financial history.
func (s *linkService) Delete(ctx context.Context, id uint) error {
	count, err := s.conversionRepo.CountUnpaidByLink(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check link conversions: %w", err)
	}
	if count > 0 {
		return ErrHasConversions
	}

	if err := s.linkRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return nil
}
