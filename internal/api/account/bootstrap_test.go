package account

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSeeder struct {
	existing map[int64]decimal.Decimal
	names    map[int64]string
	err      error
}

func (f *fakeSeeder) CreateIfAbsent(_ context.Context, id int64, name string, balance decimal.Decimal) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.existing[id]; ok {
		return false, nil
	}
	f.existing[id] = balance
	f.names[id] = name
	return true, nil
}

func TestBootstrapSeedsDefaultAccount(t *testing.T) {
	s := &fakeSeeder{existing: map[int64]decimal.Decimal{}, names: map[int64]string{}}

	require.NoError(t, Bootstrap(context.Background(), s))
	assert.True(t, decimal.NewFromInt(1000).Equal(s.existing[1]))
	assert.Equal(t, "Test User", s.names[1])
}

func TestBootstrapKeepsExistingAccount(t *testing.T) {
	s := &fakeSeeder{existing: map[int64]decimal.Decimal{1: decimal.NewFromInt(42)}, names: map[int64]string{}}

	require.NoError(t, Bootstrap(context.Background(), s))
	require.NoError(t, Bootstrap(context.Background(), s))
	assert.True(t, decimal.NewFromInt(42).Equal(s.existing[1]))
}

func TestBootstrapWrapsError(t *testing.T) {
	boom := errors.New("relation \"account\" does not exist")
	err := Bootstrap(context.Background(), &fakeSeeder{err: boom})

	assert.ErrorIs(t, err, boom)
}
