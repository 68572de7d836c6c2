package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"coldchain/internal/supplychain/models"
	id "coldchain/pkg/domain"
)

// Applier is the write side of an entity store.
type Applier interface {
	Apply(ctx context.Context, cs *models.ChangeSet) error
}

// SeedFile is the on-disk participant registry format.
type SeedFile struct {
	Participants []models.Business `json:"participants"`
}

// LoadSeed registers the participants listed in the JSON file at path and
// returns how many were written. Participants are the only entities the
// engine does not create itself.
func LoadSeed(ctx context.Context, path string, st Applier) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	cs, err := seedChangeSet(seed)
	if err != nil {
		return 0, err
	}
	if err := st.Apply(ctx, cs); err != nil {
		return 0, fmt.Errorf("apply seed: %w", err)
	}
	return len(cs.Businesses), nil
}

func seedChangeSet(seed SeedFile) (*models.ChangeSet, error) {
	cs := &models.ChangeSet{}
	seen := make(map[id.ParticipantName]bool, len(seed.Participants))
	for i := range seed.Participants {
		p := seed.Participants[i]
		name, err := id.ParseParticipantName(string(p.Name))
		if err != nil {
			return nil, fmt.Errorf("seed participant %d: %w", i, err)
		}
		if seen[name] {
			return nil, fmt.Errorf("seed participant %q listed twice", name)
		}
		seen[name] = true

		b, err := models.NewBusiness(name, p.Role, p.Address, p.AccountBalance)
		if err != nil {
			return nil, fmt.Errorf("seed participant %q: %w", name, err)
		}
		b.DebtBalance = p.DebtBalance
		b.AssetBalance = p.AssetBalance
		b.Products = p.Products
		cs.Businesses = append(cs.Businesses, b)
	}
	return cs, nil
}
