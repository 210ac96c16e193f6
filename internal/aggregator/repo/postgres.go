package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
)

// Postgres é o armazenamento secundário de backup (best-effort)
// Toda escrita é snapshot completo: drop-and-reinsert dentro de transação,
// nunca merge incremental
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

// Ping valida a dependência com timeout próprio
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return p.DB.PingContext(ctx)
}

// EnsureSchema cria as três coleções lógicas se ainda não existirem
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	const q = `
		CREATE TABLE IF NOT EXISTS sports (
		  key           TEXT PRIMARY KEY,
		  sport_group   TEXT NOT NULL,
		  title         TEXT NOT NULL,
		  description   TEXT NOT NULL DEFAULT '',
		  active        BOOLEAN NOT NULL DEFAULT FALSE,
		  has_outrights BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE TABLE IF NOT EXISTS odds_raw (
		  snapshot_id TEXT NOT NULL,
		  event_id    TEXT NOT NULL,
		  payload     JSONB NOT NULL,
		  fetched_at  TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS odds_simplified (
		  snapshot_id     TEXT NOT NULL,
		  event_id        TEXT NOT NULL,
		  sport_key       TEXT NOT NULL,
		  sport_title     TEXT NOT NULL,
		  commence_time   TEXT NOT NULL,
		  home_team       TEXT NOT NULL,
		  away_team       TEXT NOT NULL,
		  market_type     TEXT NOT NULL,
		  home_team_price DOUBLE PRECISION NOT NULL,
		  away_team_price DOUBLE PRECISION NOT NULL,
		  bookmaker       TEXT NOT NULL,
		  last_update     TEXT NOT NULL
		);
	`
	_, err := p.DB.ExecContext(ctx, q)
	return err
}

// ReplaceSports substitui a lista inteira de esportes
func (p *Postgres) ReplaceSports(ctx context.Context, sports []dto.Sport) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sports`); err != nil {
		return fmt.Errorf("clear sports: %w", err)
	}

	const q = `
		INSERT INTO sports (key, sport_group, title, description, active, has_outrights)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (key) DO NOTHING`
	for _, s := range sports {
		if _, err := tx.ExecContext(ctx, q, s.Key, s.Group, s.Title, s.Description, s.Active, s.HasOutrights); err != nil {
			return fmt.Errorf("insert sport %s: %w", s.Key, err)
		}
	}

	return tx.Commit()
}

// ReplaceOddsSnapshot substitui o snapshot bruto e o simplificado de uma vez
// Retorna o snapshot_id gerado para o refresh
func (p *Postgres) ReplaceOddsSnapshot(ctx context.Context, raw []dto.RawOddsEvent, simplified []dto.SimplifiedOdds) (string, error) {
	snapshotID := uuid.NewString()
	fetchedAt := time.Now().UTC()

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM odds_raw`); err != nil {
		return "", fmt.Errorf("clear odds_raw: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM odds_simplified`); err != nil {
		return "", fmt.Errorf("clear odds_simplified: %w", err)
	}

	const qRaw = `INSERT INTO odds_raw (snapshot_id, event_id, payload, fetched_at) VALUES ($1,$2,$3,$4)`
	for _, ev := range raw {
		payload, err := json.Marshal(ev)
		if err != nil {
			return "", fmt.Errorf("marshal raw event %s: %w", ev.ID, err)
		}
		if _, err := tx.ExecContext(ctx, qRaw, snapshotID, ev.ID, payload, fetchedAt); err != nil {
			return "", fmt.Errorf("insert raw event %s: %w", ev.ID, err)
		}
	}

	const qSimp = `
		INSERT INTO odds_simplified
		  (snapshot_id, event_id, sport_key, sport_title, commence_time,
		   home_team, away_team, market_type, home_team_price, away_team_price,
		   bookmaker, last_update)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	for _, o := range simplified {
		if _, err := tx.ExecContext(ctx, qSimp, snapshotID,
			o.EventID, o.SportKey, o.SportTitle, o.CommenceTime,
			o.HomeTeam, o.AwayTeam, o.MarketType, o.HomeTeamPrice, o.AwayTeamPrice,
			o.Bookmaker, o.LastUpdate,
		); err != nil {
			return "", fmt.Errorf("insert simplified %s: %w", o.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return snapshotID, nil
}

// CountSimplified conta registros do snapshot simplificado corrente
// Usado pelo reconciler de startup pra decidir se precisa semear odds
func (p *Postgres) CountSimplified(ctx context.Context) (int, error) {
	var n int
	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM odds_simplified`).Scan(&n)
	return n, err
}
