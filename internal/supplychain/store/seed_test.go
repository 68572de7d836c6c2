package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldchain/internal/supplychain/models"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "participants.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeed(t, `{"participants": [
		{"name": "Buyer Co", "role": "BUYER", "address": {"country": "NL"}, "account_balance": "5000"},
		{"name": "Funder Co", "role": "FUNDER", "address": {"country": "UK"}, "account_balance": "0", "asset_balance": "20000"}
	]}`)
	st := NewInMemory()

	n, err := LoadSeed(context.Background(), path, st)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	funder, err := st.FindBusiness(context.Background(), "Funder Co")
	require.NoError(t, err)
	assert.Equal(t, models.RoleFunder, funder.Role)
	assert.True(t, funder.AssetBalance.Equal(decimal.NewFromInt(20000)))
}

func TestLoadSeedRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown role":   `{"participants": [{"name": "X", "role": "BROKER", "account_balance": "0"}]}`,
		"empty name":     `{"participants": [{"name": " ", "role": "BUYER", "account_balance": "0"}]}`,
		"duplicate name": `{"participants": [{"name": "A", "role": "BUYER", "account_balance": "0"}, {"name": "A", "role": "SELLER", "account_balance": "0"}]}`,
		"not json":       `participants`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			st := NewInMemory()
			_, err := LoadSeed(context.Background(), writeSeed(t, body), st)
			require.Error(t, err)
			_, err = st.FindBusiness(context.Background(), "A")
			assert.Error(t, err, "nothing is written on failure")
		})
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	_, err := LoadSeed(context.Background(), filepath.Join(t.TempDir(), "missing.json"), NewInMemory())
	require.Error(t, err)
}
