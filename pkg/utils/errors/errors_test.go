package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedConstructors(t *testing.T) {
	t.Parallel()

	require.Equal(t, ErrorTypeInvalidArgument, TypeOf(InvalidArgument("bad input")))
	require.Equal(t, ErrorTypeInvalidArgument, TypeOf(InvalidArgumentf("bad input %d", 7)))
	require.Equal(t, ErrorTypeNonConvergence, TypeOf(NonConvergence("no root")))
	require.Equal(t, ErrorTypeArbitrage, TypeOf(Arbitrage("crossed quotes")))
	require.Equal(t, ErrorTypeInternal, TypeOf(Internal("oops")))
	require.Equal(t, ErrorTypeUnknown, TypeOf(New("plain")))
	require.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("foreign")))
	require.Equal(t, ErrorTypeUnknown, TypeOf(nil))
}

func TestWrapPreservesType(t *testing.T) {
	t.Parallel()

	inner := NonConvergence("no root in bracket")
	wrapped := Wrapf(inner, "pillar %d", 3)

	require.True(t, IsNonConvergence(wrapped))
	require.Equal(t, "pillar 3: no root in bracket", wrapped.Error())
	require.True(t, stderrors.Is(wrapped, inner))
}

func TestWrapForeignError(t *testing.T) {
	t.Parallel()

	inner := stderrors.New("io failure")
	wrapped := Wrap(inner, "loading quotes")

	require.Equal(t, ErrorTypeUnknown, TypeOf(wrapped))
	require.True(t, stderrors.Is(wrapped, inner))
}

func TestWrapNilIsNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, Wrap(nil, "ignored"))
	require.NoError(t, Wrapf(nil, "ignored %d", 1))
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	require.True(t, IsInvalidArgument(InvalidArgument("x")))
	require.False(t, IsInvalidArgument(Arbitrage("x")))
	require.True(t, IsArbitrage(Arbitrage("x")))
	require.False(t, IsNonConvergence(nil))
}
