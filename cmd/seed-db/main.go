// Command seed-db loads the catalog seed file, creates launch coupons, and
// provisions the initial admin account.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/joralabs/jora-api/internal/auth"
	"github.com/joralabs/jora-api/internal/repository"
)

type variantJSON struct {
	SKU           string           `json:"sku"`
	Size          string           `json:"size"`
	Color         string           `json:"color"`
	StockQuantity int              `json:"stock_quantity"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
	Images        []string         `json:"images,omitempty"`
}

type productJSON struct {
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Category         string          `json:"category"`
	Description      string          `json:"description"`
	FabricDetails    string          `json:"fabric_details"`
	CareInstructions string          `json:"care_instructions"`
	BasePrice        decimal.Decimal `json:"base_price"`
	Variants         []variantJSON   `json:"variants"`
}

type categoryJSON struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type seedFile struct {
	Categories []categoryJSON `json:"categories"`
	Products   []productJSON  `json:"products"`
}

func main() {
	var (
		databaseURL   string
		catalogFile   string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog seed JSON file")
	flag.StringVar(&adminEmail, "admin-email", "admin@jora.in", "email for the initial admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the initial admin account (or JORA_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("JORA_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or JORA_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	if err := seedAdmin(ctx, pool, adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting categories", slog.Int("count", len(seed.Categories)))

	categoryIDs := make(map[string]int64, len(seed.Categories))
	for _, c := range seed.Categories {
		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (name, slug, description, display_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO UPDATE SET
				name          = EXCLUDED.name,
				description   = EXCLUDED.description,
				display_order = EXCLUDED.display_order
			RETURNING id`,
			c.Name, c.Slug, c.Description, c.DisplayOrder,
		).Scan(&id)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.Slug)
		}
		categoryIDs[c.Slug] = id
	}

	slog.Info("upserting products", slog.Int("count", len(seed.Products)))

	for _, p := range seed.Products {
		var categoryID *int64
		if id, ok := categoryIDs[p.Category]; ok {
			categoryID = &id
		}

		var productID string
		err := pool.QueryRow(ctx, `
			INSERT INTO products (id, category_id, name, slug, description, fabric_details, care_instructions, base_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (slug) DO UPDATE SET
				category_id       = EXCLUDED.category_id,
				name              = EXCLUDED.name,
				description       = EXCLUDED.description,
				fabric_details    = EXCLUDED.fabric_details,
				care_instructions = EXCLUDED.care_instructions,
				base_price        = EXCLUDED.base_price,
				updated_at        = now()
			RETURNING id`,
			uuid.New().String(), categoryID, p.Name, p.Slug,
			p.Description, p.FabricDetails, p.CareInstructions, p.BasePrice,
		).Scan(&productID)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Slug)
		}

		for _, v := range p.Variants {
			images, err := json.Marshal(v.Images)
			if err != nil {
				return errors.Wrapf(err, "marshal images for %s", v.SKU)
			}
			_, err = pool.Exec(ctx, `
				INSERT INTO product_variants (product_id, sku, size, color, stock_quantity, price_override, images)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (sku) DO UPDATE SET
					size           = EXCLUDED.size,
					color          = EXCLUDED.color,
					stock_quantity = EXCLUDED.stock_quantity,
					price_override = EXCLUDED.price_override,
					images         = EXCLUDED.images`,
				productID, v.SKU, v.Size, v.Color, v.StockQuantity, v.PriceOverride, images,
			)
			if err != nil {
				return errors.Wrapf(err, "upsert variant %s", v.SKU)
			}
		}

		slog.Info("upserted product", slog.String("slug", p.Slug), slog.Int("variants", len(p.Variants)))
	}

	return nil
}

type seedCoupon struct {
	Code          string
	DiscountType  string
	Value         decimal.Decimal
	MinOrderValue decimal.Decimal
	MaxDiscount   *decimal.Decimal
	ValidDays     int
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding launch coupons")

	maxWelcome := decimal.NewFromInt(500)
	coupons := []seedCoupon{
		{
			Code:          "WELCOME10",
			DiscountType:  "percentage",
			Value:         decimal.NewFromInt(10),
			MinOrderValue: decimal.NewFromInt(500),
			MaxDiscount:   &maxWelcome,
			ValidDays:     365,
		},
		{
			Code:          "FLAT200",
			DiscountType:  "fixed",
			Value:         decimal.NewFromInt(200),
			MinOrderValue: decimal.NewFromInt(1500),
			ValidDays:     90,
		},
	}

	now := time.Now()
	for _, c := range coupons {
		_, err := pool.Exec(ctx, `
			INSERT INTO coupons (code, discount_type, discount_value, min_order_value, max_discount, valid_from, valid_until)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (code) DO UPDATE SET
				discount_type   = EXCLUDED.discount_type,
				discount_value  = EXCLUDED.discount_value,
				min_order_value = EXCLUDED.min_order_value,
				max_discount    = EXCLUDED.max_discount,
				valid_from      = EXCLUDED.valid_from,
				valid_until     = EXCLUDED.valid_until`,
			c.Code, c.DiscountType, c.Value, c.MinOrderValue, c.MaxDiscount,
			now, now.AddDate(0, 0, c.ValidDays),
		)
		if err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.Code)
		}

		slog.Info("upserted coupon", slog.String("code", c.Code))
	}

	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	slog.Info("seeding admin account", slog.String("email", email))

	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_verified)
		VALUES ($1, $2, $3, 'JORA', 'Admin', 'admin', TRUE)
		ON CONFLICT (email) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role          = 'admin',
			updated_at    = now()`,
		uuid.New().String(), email, hash,
	)
	if err != nil {
		return errors.Wrap(err, "upsert admin user")
	}

	return nil
}
