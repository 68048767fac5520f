package position

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceParams() Params {
	return Params{
		Amount:         100,
		LTV:            0.8,
		Leverage:       5,
		CollateralRate: 0.1376,
		BorrowRate:     0.1097,
	}
}

func TestNew_ReferencePosition(t *testing.T) {
	p, err := New(referenceParams())
	require.NoError(t, err)

	assert.InDelta(t, 5.0, p.MaxLeverage(), 1e-9)
	assert.Equal(t, 100.0, p.Collateral())
	assert.InDelta(t, 400.0, p.Borrow(), 1e-9)
	assert.InDelta(t, 500.0, p.Deposit(), 1e-9)
	assert.InDelta(t, 24.92, p.AnnualEarnings(), 1e-9)
	assert.InDelta(t, 24.92, p.NetAPY(), 1e-9)
	assert.InDelta(t, 2.0767, p.MonthlyEarnings(), 1e-4)
	assert.InDelta(t, 0.06827, p.DailyEarnings(), 1e-5)

	t.Logf("annual=%.6f monthly=%.6f daily=%.6f", p.AnnualEarnings(), p.MonthlyEarnings(), p.DailyEarnings())
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"zero amount", func(p *Params) { p.Amount = 0 }, "amount"},
		{"negative amount", func(p *Params) { p.Amount = -10 }, "amount"},
		{"ltv one", func(p *Params) { p.LTV = 1 }, "ltv"},
		{"ltv zero", func(p *Params) { p.LTV = 0 }, "ltv"},
		{"ltv above one", func(p *Params) { p.LTV = 1.2 }, "ltv"},
		{"leverage below one", func(p *Params) { p.Leverage = 0.5 }, "leverage"},
		{"leverage above max", func(p *Params) { p.Leverage = 5.01 }, "leverage"},
		{"negative collateral rate", func(p *Params) { p.CollateralRate = -0.01 }, "collateral_rate"},
		{"negative borrow rate", func(p *Params) { p.BorrowRate = -0.01 }, "borrow_rate"},
		{"NaN amount", func(p *Params) { p.Amount = math.NaN() }, "amount"},
		{"infinite borrow rate", func(p *Params) { p.BorrowRate = math.Inf(1) }, "borrow_rate"},
		{"amount overflows deposit", func(p *Params) { p.Amount = 1e308 }, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := referenceParams()
			tt.mutate(&params)

			_, err := New(params)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.True(t, IsInvalidInput(err))

			var inputErr *InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestNew_LeverageBoundUsesSameCallLTV(t *testing.T) {
	// 5x is fine at ltv 0.8 but not at ltv 0.2 (max 1.25x).
	params := referenceParams()
	params.LTV = 0.2

	_, err := New(params)
	assert.ErrorIs(t, err, ErrInvalidInput)

	params.Leverage = 1.25
	p, err := New(params)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, p.MaxLeverage(), 1e-12)
}

func TestNew_ClampsLeverageWithinTolerance(t *testing.T) {
	params := referenceParams()
	maxLev, err := MaxLeverageFor(params.LTV)
	require.NoError(t, err)

	params.Leverage = maxLev + LeverageTolerance/2
	p, err := New(params)
	require.NoError(t, err)
	assert.Equal(t, maxLev, p.Leverage())
	assert.LessOrEqual(t, p.Leverage(), p.MaxLeverage())
}

func TestMaxLeverageFor(t *testing.T) {
	for _, ltv := range []float64{0.01, 0.1, 0.5, 0.8, 0.95, 0.999} {
		maxLev, err := MaxLeverageFor(ltv)
		require.NoError(t, err)
		assert.False(t, math.IsInf(maxLev, 0))
		assert.Greater(t, maxLev, 1.0)
		assert.InDelta(t, 1/(1-ltv), maxLev, 1e-12)
	}

	_, err := MaxLeverageFor(1)
	assert.ErrorIs(t, err, ErrDivisionUndefined)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = MaxLeverageFor(-0.1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrDivisionUndefined)
}

func TestDefaultLeverage(t *testing.T) {
	lev, err := DefaultLeverage(0.8)
	require.NoError(t, err)
	assert.Equal(t, PreferredLeverage, lev)

	lev, err = DefaultLeverage(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, lev, 1e-12)

	_, err = DefaultLeverage(1)
	assert.Error(t, err)
}

func TestUnleveragedPosition(t *testing.T) {
	params := referenceParams()
	params.Leverage = 1

	p, err := New(params)
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.Borrow())
	assert.Equal(t, params.Amount, p.Deposit())
	assert.InDelta(t, params.CollateralRate*params.Amount, p.AnnualEarnings(), 1e-12)
	assert.InDelta(t, params.CollateralRate*100, p.NetAPY(), 1e-12)
}

func TestDerivedIdentities(t *testing.T) {
	for _, lev := range []float64{1, 1.5, 2, 3.3, 4, 5} {
		params := referenceParams()
		params.Leverage = lev
		p, err := New(params)
		require.NoError(t, err)

		assert.InDelta(t, p.Collateral()+p.Borrow(), p.Deposit(), 1e-9)
		assert.InDelta(t, params.Amount*(lev-1), p.Borrow(), 1e-9)
		assert.Equal(t, p.AnnualEarnings()/12, p.MonthlyEarnings())
		assert.Equal(t, p.AnnualEarnings()/365, p.DailyEarnings())
	}
}

func TestEarningsMonotonicInLeverage(t *testing.T) {
	cases := []struct {
		name           string
		collateralRate float64
		borrowRate     float64
		increasing     bool
	}{
		{"positive carry", 0.1376, 0.1097, true},
		{"negative carry", 0.05, 0.09, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := referenceParams()
			params.CollateralRate = tc.collateralRate
			params.BorrowRate = tc.borrowRate

			prev := math.NaN()
			for _, lev := range []float64{1, 1.5, 2, 3, 4, 5} {
				params.Leverage = lev
				p, err := New(params)
				require.NoError(t, err)

				earnings := p.AnnualEarnings()
				if !math.IsNaN(prev) {
					if tc.increasing {
						assert.Greater(t, earnings, prev, "leverage %.2f", lev)
					} else {
						assert.Less(t, earnings, prev, "leverage %.2f", lev)
					}
				}
				prev = earnings
			}
		})
	}
}

func TestNetAPYUsesOriginalDeposit(t *testing.T) {
	p, err := New(referenceParams())
	require.NoError(t, err)

	assert.InDelta(t, p.AnnualEarnings()/p.Collateral()*100, p.NetAPY(), 1e-12)
	assert.NotEqual(t, p.AnnualEarnings()/p.Deposit()*100, p.NetAPY())
}

func TestWithLeverage_SharesOtherFields(t *testing.T) {
	base, err := New(referenceParams())
	require.NoError(t, err)

	what, err := base.WithLeverage(2)
	require.NoError(t, err)

	assert.Equal(t, 2.0, what.Leverage())
	assert.Equal(t, base.Amount(), what.Amount())
	assert.Equal(t, base.LTV(), what.LTV())
	assert.Equal(t, base.CollateralRate(), what.CollateralRate())
	assert.Equal(t, base.BorrowRate(), what.BorrowRate())
	assert.Equal(t, 5.0, base.Leverage(), "base must not change")

	_, err = base.WithLeverage(9)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMetricsSnapshot(t *testing.T) {
	p, err := New(referenceParams())
	require.NoError(t, err)

	m := p.Metrics()
	assert.Equal(t, p.Deposit(), m.Deposit)
	assert.Equal(t, p.Borrow(), m.Borrow)
	assert.Equal(t, p.NetAPY(), m.NetAPY)
	assert.Equal(t, p.DailyEarnings(), m.DailyEarnings)
	assert.Equal(t, p.MaxLeverage(), m.MaxLeverage)
	assert.Equal(t, p.Params(), Params{
		Amount:         m.Amount,
		LTV:            m.LTV,
		Leverage:       m.Leverage,
		CollateralRate: m.CollateralRate,
		BorrowRate:     m.BorrowRate,
	})
}

func TestPositionConcurrentReads(t *testing.T) {
	p, err := New(referenceParams())
	require.NoError(t, err)
	want := p.Metrics()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := p.Metrics(); got != want {
					t.Errorf("metrics changed under concurrent reads: %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNew_LargeFiniteAmountAccepted(t *testing.T) {
	params := referenceParams()
	params.Amount = 1e300

	p, err := New(params)
	require.NoError(t, err)
	for _, v := range []float64{p.Deposit(), p.AnnualEarnings(), p.MonthlyEarnings(), p.DailyEarnings(), p.NetAPY()} {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	}
}
