// Command coupon-ingest imports bulk promo code dumps. A code counts as
// valid only when it appears in at least two of the three dump files; valid
// codes are upserted into the coupons table with a one-year validity window.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/joralabs/jora-api/internal/repository"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	numFiles      = 3
	progressEvery = 10_000_000
	minCodeLen    = 8
	maxCodeLen    = 10
	upsertBatch   = 500
)

// codeRule describes the discount rule to apply for a known promo code.
// Codes without an entry fall back to defaultRule.
type codeRule struct {
	discountType  string
	value         string
	minOrderValue string
	maxDiscount   string
}

var codeRules = map[string]codeRule{
	"FIFTYOFF": {discountType: "percentage", value: "50", maxDiscount: "2000"},
	"SIXTYOFF": {discountType: "percentage", value: "60", maxDiscount: "2500"},
	"GNULINUX": {discountType: "percentage", value: "15"},
	"OVER9000": {discountType: "fixed", value: "900", minOrderValue: "9000"},
	"HAPPYHRS": {discountType: "percentage", value: "18", maxDiscount: "1000"},
	"FESTIVAL": {discountType: "fixed", value: "300", minOrderValue: "2000"},
}

var defaultRule = codeRule{
	discountType: "percentage",
	value:        "10",
	maxDiscount:  "500",
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing couponbaseN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files := make([]string, numFiles)
	for i := range numFiles {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("couponbase%d.gz", i+1))
		if _, err := os.Stat(files[i]); err != nil {
			return errors.Wrapf(err, "check file %s", files[i])
		}
	}

	// The dumps are too large to hold in memory, so validity is decided in
	// two streaming passes: build one bloom filter per file, then re-stream
	// each file probing the other files' filters.
	slog.Info("pass 1: building bloom filters", slog.Int("files", numFiles))
	filters, err := buildFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: cross-checking codes")
	valid, err := crossCheck(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "cross-check codes")
	}

	slog.Info("valid codes found", slog.Int("count", len(valid)))
	if len(valid) == 0 {
		return nil
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return errors.Wrap(upsertCoupons(ctx, pool, valid), "write coupons")
}

// wellFormed filters out garbage lines before they reach the filters.
func wellFormed(code string) bool {
	return len(code) >= minCodeLen && len(code) <= maxCodeLen
}

// buildFilters streams every file once, in parallel, producing one bloom
// filter per file.
func buildFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var seen uint64

			err := scanGzLines(ctx, path, func(code string) {
				if !wellFormed(code) {
					return
				}
				filter.AddString(code)
				if seen++; seen%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("codes", seen))
				}
			})
			if err != nil {
				return errors.Wrapf(err, "file %d", i+1)
			}

			slog.Info("pass 1 complete", slog.Int("file", i+1), slog.Uint64("total_codes", seen))
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// crossCheck re-streams each file, probing every OTHER file's filter, and
// keeps codes whose presence bitmask covers two or more files. Bloom false
// positives can only over-admit here, never drop a genuinely valid code.
func crossCheck(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	perFile := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			found := make(map[string]uint)
			bit := uint(1) << uint(i)
			var seen uint64

			err := scanGzLines(ctx, path, func(code string) {
				if !wellFormed(code) {
					return
				}
				if seen++; seen%progressEvery == 0 {
					slog.Info("pass 2 progress", slog.Int("file", i+1), slog.Uint64("codes", seen))
				}
				for j, f := range filters {
					if j != i && f.TestString(code) {
						found[code] |= bit
						break
					}
				}
			})
			if err != nil {
				return errors.Wrapf(err, "file %d", i+1)
			}

			slog.Info("pass 2 complete",
				slog.Int("file", i+1),
				slog.Uint64("total_codes", seen),
				slog.Int("candidates", len(found)),
			)
			perFile[i] = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, found := range perFile {
		for code, mask := range found {
			merged[code] |= mask
		}
	}

	var valid []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			valid = append(valid, code)
		}
	}
	return valid, nil
}

// scanGzLines opens a gzip-compressed file and calls fn for each line.
func scanGzLines(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	return errors.Wrapf(scanner.Err(), "scan %s", path)
}

const upsertCouponSQL = `
	INSERT INTO coupons (code, discount_type, discount_value, min_order_value, max_discount, valid_from, valid_until)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (code) DO UPDATE SET
		discount_type   = EXCLUDED.discount_type,
		discount_value  = EXCLUDED.discount_value,
		min_order_value = EXCLUDED.min_order_value,
		max_discount    = EXCLUDED.max_discount,
		valid_from      = EXCLUDED.valid_from,
		valid_until     = EXCLUDED.valid_until,
		is_active       = TRUE`

// upsertCoupons writes valid codes in batches to cut round trips.
func upsertCoupons(ctx context.Context, pool *pgxpool.Pool, codes []string) error {
	slog.Info("writing coupons", slog.Int("count", len(codes)))

	now := time.Now()
	validUntil := now.AddDate(1, 0, 0)
	written := 0

	for start := 0; start < len(codes); start += upsertBatch {
		end := min(start+upsertBatch, len(codes))

		batch := &pgx.Batch{}
		for _, code := range codes[start:end] {
			rule, ok := codeRules[code]
			if !ok {
				rule = defaultRule
			}

			value, err := decimal.NewFromString(rule.value)
			if err != nil {
				return errors.Wrapf(err, "parse discount value for code %s", code)
			}

			minOrder := decimal.Zero
			if rule.minOrderValue != "" {
				if minOrder, err = decimal.NewFromString(rule.minOrderValue); err != nil {
					return errors.Wrapf(err, "parse min order value for code %s", code)
				}
			}

			var maxDiscount *decimal.Decimal
			if rule.maxDiscount != "" {
				d, err := decimal.NewFromString(rule.maxDiscount)
				if err != nil {
					return errors.Wrapf(err, "parse max discount for code %s", code)
				}
				maxDiscount = &d
			}

			batch.Queue(upsertCouponSQL, code, rule.discountType, value, minOrder, maxDiscount, now, validUntil)
		}

		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrapf(err, "upsert batch at offset %d", start)
		}

		written = end
		slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(codes)))
	}

	return nil
}
