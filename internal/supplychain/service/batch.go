package service

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"coldchain/internal/supplychain/lock"
	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
)

// BatchItem is the outcome of one transaction of a batch, at its submitted
// position.
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// SubmitBatch runs transactions for different contracts in parallel and the
// transactions of one contract in submission order. Each item succeeds or
// fails on its own; the returned error is only set when ctx ended before the
// batch finished.
func (s *Service) SubmitBatch(ctx context.Context, txs []models.Transaction) ([]BatchItem, error) {
	items := make([]BatchItem, len(txs))
	groups := s.groupByContract(ctx, txs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for _, idx := range groups {
		g.Go(func() error {
			for _, i := range idx {
				if err := gctx.Err(); err != nil {
					items[i] = BatchItem{Index: i, Err: err}
					continue
				}
				res, err := s.Submit(gctx, txs[i])
				items[i] = BatchItem{Index: i, Result: res, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, ctx.Err()
}

// groupByContract buckets transaction indexes by the contract they touch,
// keeping first-seen order for both buckets and members.
func (s *Service) groupByContract(ctx context.Context, txs []models.Transaction) [][]int {
	var order []string
	buckets := make(map[string][]int)
	for i, tx := range txs {
		key := s.contractKeyOf(ctx, tx)
		if key == "" {
			key = "independent:" + strconv.Itoa(i)
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}
	groups := make([][]int, 0, len(order))
	for _, k := range order {
		groups = append(groups, buckets[k])
	}
	return groups
}

// contractKeyOf returns "" for transactions that touch no existing contract.
func (s *Service) contractKeyOf(ctx context.Context, tx models.Transaction) string {
	switch t := tx.(type) {
	case models.CreateShipment:
		return lock.ContractKey(t.Contract)
	case *models.CreateShipment:
		return lock.ContractKey(t.Contract)
	case models.InvoiceUpdate:
		return lock.ContractKey(t.Contract)
	case *models.InvoiceUpdate:
		return lock.ContractKey(t.Contract)
	case models.FundsApproval:
		return lock.ContractKey(t.Contract)
	case *models.FundsApproval:
		return lock.ContractKey(t.Contract)
	case models.ShipmentDispatched:
		return s.shipmentContractKey(ctx, t.Shipment)
	case *models.ShipmentDispatched:
		return s.shipmentContractKey(ctx, t.Shipment)
	case models.TemperatureReadingTx:
		return s.shipmentContractKey(ctx, t.Shipment)
	case *models.TemperatureReadingTx:
		return s.shipmentContractKey(ctx, t.Shipment)
	case models.ShipmentReceived:
		return s.shipmentContractKey(ctx, t.Shipment)
	case *models.ShipmentReceived:
		return s.shipmentContractKey(ctx, t.Shipment)
	}
	return ""
}

// shipmentContractKey falls back to the shipment key for unknown shipments,
// so their transactions still run in order and fail individually.
func (s *Service) shipmentContractKey(ctx context.Context, shipmentID id.ShipmentID) string {
	sh, err := s.store.FindShipment(ctx, shipmentID)
	if err != nil {
		return lock.ShipmentKey(shipmentID)
	}
	return lock.ContractKey(sh.ContractID)
}
