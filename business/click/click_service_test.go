package click

import (
	"context"
	"testing"

	"bioAffiliate/domain"
)

type fakeClickRepo struct {
	created []domain.Click
}

func (f *fakeClickRepo) Create(_ context.Context, c *domain.Click) error {
	c.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *c)
	return nil
}

func (f *fakeClickRepo) FindByPartner(_ context.Context, partnerID uint, limit int) ([]domain.Click, error) {
	return nil, nil
}

func (f *fakeClickRepo) FindByLink(_ context.Context, linkID uint, limit int) ([]domain.Click, error) {
	return nil, nil
}

func TestRecord_UsesResolvedLink(t *testing.T) {
	repo := &fakeClickRepo{}
	svc := NewClickService(repo)

	productID := uint(3)
	link := domain.Link{ID: 5, PartnerID: 2, ProductID: &productID}

	row, err := svc.Record(context.Background(), link, Meta{
		IP:        "203.0.113.9",
		UserAgent: "curl/8.4.0",
		Referer:   "https://partner.example.com",
		Country:   "DE",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if row.LinkID != 5 || row.PartnerID != 2 {
		t.Errorf("click linked to link=%d partner=%d, want 5/2", row.LinkID, row.PartnerID)
	}
	if row.ProductID == nil || *row.ProductID != productID {
		t.Errorf("product id not carried from the link")
	}
	if !row.IsBot {
		t.Error("curl user agent not classified as bot")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted click, got %d", len(repo.created))
	}
}
