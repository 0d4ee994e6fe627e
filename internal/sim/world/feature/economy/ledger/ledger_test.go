package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredit(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(Wood, 3))
	require.NoError(t, l.Credit(Wood, 0))
	require.NoError(t, l.Credit(Stone, -4))
	require.Equal(t, Counts{Wood: 3, Stone: 0}, l.Snapshot())

	err := l.Credit(Kind("GOLD"), 1)
	require.ErrorIs(t, err, ErrUnknownResource)
}

func TestDebit_Succeeds(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(Wood, 20))
	require.NoError(t, l.Credit(Stone, 10))

	require.NoError(t, l.Debit(Bundle{Wood: 20, Stone: 10}))
	require.Equal(t, Counts{}, l.Snapshot())
}

func TestDebit_ShortfallLeavesLedgerUnchanged(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(Wood, 25))
	require.NoError(t, l.Credit(Stone, 4))

	err := l.Debit(Bundle{Wood: 20, Stone: 10})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInsufficientResources))

	var sf *ShortfallError
	require.True(t, errors.As(err, &sf))
	require.Equal(t, Bundle{Stone: 6}, sf.Missing)
	require.Contains(t, err.Error(), "STONE=6")

	require.Equal(t, Counts{Wood: 25, Stone: 4}, l.Snapshot())
}

func TestDebit_InvalidCost(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(Wood, 5))

	require.ErrorIs(t, l.Debit(Bundle{Wood: -1}), ErrInvalidCost)
	require.ErrorIs(t, l.Debit(Bundle{Kind("GOLD"): 1}), ErrUnknownResource)
	require.Equal(t, 5, l.Get(Wood))
}

func TestDebit_NeverNegative(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(Wood, 3))
	for i := 0; i < 5; i++ {
		_ = l.Debit(Bundle{Wood: 2})
		require.GreaterOrEqual(t, l.Get(Wood), 0)
	}
	require.Equal(t, 1, l.Get(Wood))
}

func TestCanAfford(t *testing.T) {
	l := New()
	require.True(t, l.CanAfford(nil))
	require.False(t, l.CanAfford(Bundle{Wood: 1}))
	require.NoError(t, l.Credit(Wood, 1))
	require.True(t, l.CanAfford(Bundle{Wood: 1}))
	require.False(t, l.CanAfford(Bundle{Wood: -1}))
}

func TestCanAfford_AgreesWithDebit(t *testing.T) {
	costs := []Bundle{
		nil,
		{Wood: 5},
		{Wood: 6},
		{Wood: -1},
		{Wood: 50, Stone: -1},
		{Kind("GOLD"): 1},
		{Wood: 2, Stone: 1},
	}
	for _, cost := range costs {
		l := New()
		require.NoError(t, l.Credit(Wood, 5))
		afford := l.CanAfford(cost)
		require.Equal(t, afford, l.Debit(cost) == nil, "cost %v", cost)
	}
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind(" wood ")
	require.True(t, ok)
	require.Equal(t, Wood, k)
	_, ok = ParseKind("iron")
	require.False(t, ok)
}
