package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
	"coldchain/pkg/platform/sentinel"
	txcontext "coldchain/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists entities as JSONB documents in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed entity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) findOne(ctx context.Context, kind, key string, dest any) error {
	var body []byte
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT body FROM entities WHERE kind = $1 AND id = $2`, kind, key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", kind, key, sentinel.ErrNotFound)
		}
		return fmt.Errorf("find %s: %w", kind, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", kind, err)
	}
	return nil
}

func (s *PostgresStore) findByContract(ctx context.Context, kind string, contractID id.ContractID, dest any) error {
	var body []byte
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT body FROM entities WHERE kind = $1 AND contract_id = $2`, kind, contractID.String()).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s for contract %s: %w", kind, contractID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("find %s by contract: %w", kind, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", kind, err)
	}
	return nil
}

func (s *PostgresStore) FindBusiness(ctx context.Context, name id.ParticipantName) (*models.Business, error) {
	var b models.Business
	if err := s.findOne(ctx, kindBusiness, string(name), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// FindBusinesses loads several participants in one round trip. Missing names
// are absent from the map.
func (s *PostgresStore) FindBusinesses(ctx context.Context, names []id.ParticipantName) (map[id.ParticipantName]*models.Business, error) {
	out := make(map[id.ParticipantName]*models.Business, len(names))
	if len(names) == 0 {
		return out, nil
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = string(n)
	}

	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT body FROM entities WHERE kind = $1 AND id = ANY($2::text[])`, kindBusiness, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("find participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		var b models.Business
		if err := json.Unmarshal(body, &b); err != nil {
			return nil, fmt.Errorf("unmarshal participant: %w", err)
		}
		out[b.Name] = &b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindProductList(ctx context.Context, listID id.ProductListID) (*models.ProductList, error) {
	var l models.ProductList
	if err := s.findOne(ctx, kindProductList, listID.String(), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) FindContract(ctx context.Context, contractID id.ContractID) (*models.Contract, error) {
	var c models.Contract
	if err := s.findOne(ctx, kindContract, contractID.String(), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) FindShipment(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	var sh models.Shipment
	if err := s.findOne(ctx, kindShipment, shipmentID.String(), &sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

func (s *PostgresStore) FindShipmentByContract(ctx context.Context, contractID id.ContractID) (*models.Shipment, error) {
	var sh models.Shipment
	if err := s.findByContract(ctx, kindShipment, contractID, &sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

func (s *PostgresStore) FindInvoice(ctx context.Context, invoiceID id.InvoiceID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.findOne(ctx, kindInvoice, invoiceID.String(), &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *PostgresStore) FindInvoiceByContract(ctx context.Context, contractID id.ContractID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.findByContract(ctx, kindInvoice, contractID, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

type row struct {
	kind       string
	key        string
	contractID sql.NullString
	body       any
}

func rowsFor(cs *models.ChangeSet) []row {
	var out []row
	for _, b := range cs.Businesses {
		out = append(out, row{kind: kindBusiness, key: string(b.Name), body: b})
	}
	for _, l := range cs.ProductLists {
		out = append(out, row{kind: kindProductList, key: l.ListID.String(), body: l})
	}
	for _, c := range cs.Contracts {
		out = append(out, row{kind: kindContract, key: c.ContractID.String(), body: c})
	}
	for _, sh := range cs.Shipments {
		out = append(out, row{kind: kindShipment, key: sh.ShipmentID.String(),
			contractID: sql.NullString{String: sh.ContractID.String(), Valid: true}, body: sh})
	}
	for _, inv := range cs.Invoices {
		out = append(out, row{kind: kindInvoice, key: inv.InvoiceID.String(),
			contractID: sql.NullString{String: inv.ContractID.String(), Valid: true}, body: inv})
	}
	return out
}

// Apply upserts every entity in cs inside one transaction. A second shipment
// or invoice for a contract violates the partial unique index and surfaces as
// sentinel.ErrAlreadyUsed.
func (s *PostgresStore) Apply(ctx context.Context, cs *models.ChangeSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin apply: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	ctx = txcontext.WithTx(ctx, tx)

	const upsert = `
		INSERT INTO entities (kind, id, contract_id, body, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (kind, id) DO UPDATE SET
			contract_id = EXCLUDED.contract_id,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`
	for _, r := range rowsFor(cs) {
		body, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", r.kind, err)
		}
		if _, err := s.execer(ctx).ExecContext(ctx, upsert, r.kind, r.key, r.contractID, body); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("%s for contract %s: %w", r.kind, r.contractID.String, sentinel.ErrAlreadyUsed)
			}
			return fmt.Errorf("upsert %s: %w", r.kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply: %w", err)
	}
	return nil
}

// ListContracts returns every contract.
func (s *PostgresStore) ListContracts(ctx context.Context) ([]*models.Contract, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT body FROM entities WHERE kind = $1 ORDER BY updated_at DESC`, kindContract)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var out []*models.Contract
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		var c models.Contract
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, fmt.Errorf("unmarshal contract: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return out, nil
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
