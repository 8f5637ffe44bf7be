package validation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fritterapp/fritter-server/internal/validation"
)

func TestChain_ShortCircuits(t *testing.T) {
	errFirst := errors.New("first")
	errSecond := errors.New("second")

	var ran []string
	rule := func(name string, err error) validation.Rule {
		return func(context.Context) error {
			ran = append(ran, name)
			return err
		}
	}

	err := validation.Chain(context.Background(),
		rule("a", nil),
		rule("b", errFirst),
		rule("c", errSecond),
	)

	assert.ErrorIs(t, err, errFirst)
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestChain_AllPass(t *testing.T) {
	calls := 0
	pass := func(context.Context) error {
		calls++
		return nil
	}

	assert.NoError(t, validation.Chain(context.Background(), pass, pass, pass))
	assert.Equal(t, 3, calls)
	assert.NoError(t, validation.Chain(context.Background()))
}

func TestChain_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := validation.Chain(ctx, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
