// Package store persists participants, product lists, contracts, shipments
// and invoices.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema creates the single entity table. Bodies are JSON documents keyed by
// (kind, id); contract_id backs the lookups by contract and the
// one-shipment / one-invoice constraint.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	kind        TEXT        NOT NULL,
	id          TEXT        NOT NULL,
	contract_id TEXT,
	body        JSONB       NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, id)
);

CREATE UNIQUE INDEX IF NOT EXISTS entities_one_per_contract
	ON entities (kind, contract_id)
	WHERE kind IN ('shipment', 'invoice');
`

const (
	kindBusiness    = "business"
	kindProductList = "product_list"
	kindContract    = "contract"
	kindShipment    = "shipment"
	kindInvoice     = "invoice"
)

// EnsureSchema applies Schema. Statements are idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
