package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
)

// Catalog returns the packages seeded on an empty database.
func Catalog() []model.Package {
	return []model.Package{
		{
			ID: "p1", Slug: "1-thang", Name: "1 Tháng", Description: "30 ngày", DurationMonths: 1,
			OriginalPrice: 499000, SalePrice: 499000,
			Features:   []string{"Tạo 30 video/tháng", "SEO cơ bản"},
			MaxDevices: 1, Active: true, SortOrder: 1,
		},
		{
			ID: "p2", Slug: "2-thang", Name: "2 Tháng", Description: "60 ngày", DurationMonths: 2,
			OriginalPrice: 998000, SalePrice: 899000, DiscountPercent: 10,
			Features:   []string{"Tạo 70 video/tháng", "SEO cơ bản"},
			MaxDevices: 1, Active: true, SortOrder: 2,
		},
		{
			ID: "p3", Slug: "3-thang", Name: "3 Tháng", Description: "90 ngày", DurationMonths: 3,
			OriginalPrice: 1497000, SalePrice: 1199000, DiscountPercent: 20, Popular: true,
			Features:   []string{"Tạo 150 video/tháng", "SEO nâng cao", "Hỗ trợ 24/7"},
			MaxDevices: 2, Active: true, SortOrder: 3,
		},
		{
			ID: "p6", Slug: "6-thang", Name: "6 Tháng", Description: "180 ngày", DurationMonths: 6,
			OriginalPrice: 2994000, SalePrice: 2099000, DiscountPercent: 30,
			Features:   []string{"Tạo 400 video/tháng", "SEO nâng cao", "Hỗ trợ 24/7"},
			MaxDevices: 3, Active: true, SortOrder: 4,
		},
		{
			ID: "p12", Slug: "1-nam", Name: "1 Năm", Description: "365 ngày", DurationMonths: 12,
			OriginalPrice: 5988000, SalePrice: 3599000, DiscountPercent: 40,
			Features:   []string{"Không giới hạn video", "Full tính năng AI", "Ưu tiên hỗ trợ"},
			MaxDevices: 5, Active: true, SortOrder: 5,
		},
	}
}

// --- PackageRepository implementation ---

const packageColumns = `id, slug, name, description, duration_months, original_price, sale_price,
                        discount_percent, features, popular, max_devices, is_active, sort_order`

func scanPackage(row pgx.Row) (model.Package, error) {
	var p model.Package
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.DurationMonths, &p.OriginalPrice, &p.SalePrice,
		&p.DiscountPercent, &p.Features, &p.Popular, &p.MaxDevices, &p.Active, &p.SortOrder)
	return p, err
}

func (r *packageRepository) ListActive(ctx context.Context) ([]model.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE is_active ORDER BY sort_order, id`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *packageRepository) GetByID(ctx context.Context, id string) (*model.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id=$1`
	p, err := scanPackage(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- LicenseRepository implementation ---

func (r *licenseRepository) Counts(ctx context.Context, now time.Time) (int, int, error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE ends_at > $1) FROM licenses`
	var total, active int
	if err := r.storage.pool.QueryRow(ctx, query, now).Scan(&total, &active); err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
