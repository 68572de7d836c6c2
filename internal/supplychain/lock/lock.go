// Package lock serializes transactions per contract and per participant.
//
// Keys are acquired in the order given and released in reverse. Callers take
// the contract key first and participant keys in sorted order, so two
// transactions can never wait on each other.
package lock

import (
	"context"

	id "coldchain/pkg/domain"
	dErrors "coldchain/pkg/domain-errors"
)

// Unlock releases a held key. It is safe to call once.
type Unlock func()

// Locker grants exclusive access to a key until the returned Unlock is called.
// Lock blocks until the key is free or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

func ContractKey(contractID id.ContractID) string {
	return "contract:" + contractID.String()
}

func ParticipantKey(name id.ParticipantName) string {
	return "participant:" + string(name)
}

// ShipmentKey is used only when a shipment cannot be resolved to a contract.
func ShipmentKey(shipmentID id.ShipmentID) string {
	return "shipment:" + shipmentID.String()
}

// LockAll acquires keys in order, skipping duplicates. On failure every key
// already held is released before returning.
func LockAll(ctx context.Context, l Locker, keys ...string) (Unlock, error) {
	held := make([]Unlock, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		unlock, err := l.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, unlock)
	}
	return release, nil
}

func waitAborted(ctx context.Context, key string) error {
	return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "gave up waiting for lock "+key)
}
