package scoring_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestComputeConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	calc := newCalculator(t)
	answers := []int{1, 2, 3, 0, 1, 2, 3, 0, 1}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for i := 0; i < 200; i++ {
		g.Go(func() error {
			res, err := calc.Compute("Depression Secondary", answers)
			if err != nil {
				return err
			}
			assert.Equal(t, 13, res.Score)
			assert.Equal(t, "Moderate", res.Severity)
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
