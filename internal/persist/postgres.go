package persist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

// PostgresSaver upserts completed records into the shipment_records table.
type PostgresSaver struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open creates the pgx pool and verifies connectivity.
func Open(ctx context.Context, cfg common.PersistConfig, logger *slog.Logger) (*PostgresSaver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("persist.connecting", "max_conns", cfg.MaxConns)

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.ConnConfig.RuntimeParams["application_name"] = "textify-extract"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("persist.connected")
	return &PostgresSaver{pool: pool, logger: logger}, nil
}

const upsertSQL = `
INSERT INTO shipment_records (
	id, number, code, sender_name, phone_number, province, price,
	company_name, extracted_text, confidence, extraction_method,
	submitted, added_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
	code = EXCLUDED.code,
	sender_name = EXCLUDED.sender_name,
	phone_number = EXCLUDED.phone_number,
	province = EXCLUDED.province,
	price = EXCLUDED.price,
	company_name = EXCLUDED.company_name,
	extracted_text = EXCLUDED.extracted_text,
	confidence = EXCLUDED.confidence,
	extraction_method = EXCLUDED.extraction_method,
	submitted = shipment_records.submitted OR EXCLUDED.submitted`

func (s *PostgresSaver) Save(ctx context.Context, rec *entity.ExtractionRecord) error {
	_, err := s.pool.Exec(ctx, upsertSQL,
		rec.ID, rec.Number, rec.Code, rec.SenderName, rec.PhoneNumber,
		rec.Province, rec.Price, rec.CompanyName, rec.ExtractedText,
		rec.Confidence, string(rec.Method), rec.Submitted, rec.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.ID, err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresSaver) Close() {
	s.pool.Close()
}
