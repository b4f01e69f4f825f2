package checkers

import (
	"context"

	"github.com/artem13815/brandreview/pkg/brand"
)

// BrandDataChecker verifies the default brand's rules can be loaded.
type BrandDataChecker struct {
	repo    brand.Repository
	brandID string
}

func NewBrandDataChecker(repo brand.Repository, brandID string) *BrandDataChecker {
	return &BrandDataChecker{repo: repo, brandID: brandID}
}

func (c *BrandDataChecker) Name() string { return "brand_data" }

func (c *BrandDataChecker) Check(ctx context.Context) error {
	_, err := c.repo.Load(ctx, c.brandID)
	return err
}
