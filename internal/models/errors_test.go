package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfpulse/pkg/contracts/domain"
)

func TestModelErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *ModelError
		want string
	}{
		{
			name: "model and player",
			err:  &ModelError{Type: ErrorTypeGapping, Model: domain.ModelHEleve, Player: "dupont", Message: "insufficient good shots"},
			want: "[gapping] H_ELEVE dupont: insufficient good shots",
		},
		{
			name: "model only",
			err:  &ModelError{Type: ErrorTypeBuild, Model: domain.ModelG, Message: "empty pool"},
			want: "[build] G: empty pool",
		},
		{
			name: "bare",
			err:  &ModelError{Type: ErrorTypeValidation, Message: "bad request"},
			want: "[validation] bad request",
		},
		{
			name: "nil receiver",
			err:  nil,
			want: "unknown model error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	cause := errors.New("engine blew up")
	err := NewGappingError(domain.ModelHEleve, "dupont", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, err.Degraded)
	assert.Equal(t, ErrorTypeGapping, GetErrorType(err))
	assert.True(t, IsDegraded(err))

	// Wrapped once more it still unwraps to the cause.
	wrapped := fmt.Errorf("run failed: %w", err)
	assert.True(t, errors.Is(wrapped, cause))
	assert.True(t, IsDegraded(wrapped))
}

func TestGetErrorTypeDefaultsToBuild(t *testing.T) {
	assert.Equal(t, ErrorTypeBuild, GetErrorType(errors.New("plain")))
	assert.False(t, IsDegraded(errors.New("plain")))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, domain.ModelA, "dupont", "ignored"))

	t.Run("plain error becomes build error", func(t *testing.T) {
		err := WrapError(errors.New("boom"), domain.ModelA, "dupont", "scatter failed")
		require.NotNil(t, err)
		assert.Equal(t, ErrorTypeBuild, err.Type)
		assert.Equal(t, domain.ModelA, err.Model)
		assert.Equal(t, "dupont", err.Player)
	})

	t.Run("existing model error is enhanced", func(t *testing.T) {
		inner := NewValidationError("bad band")
		err := WrapError(inner, domain.ModelB, "martin", "config")
		assert.Equal(t, ErrorTypeValidation, err.Type)
		assert.Equal(t, domain.ModelB, err.Model)
		assert.Equal(t, "martin", err.Player)
		assert.Equal(t, "config: bad band", err.Message)
	})
}

func TestErrorList(t *testing.T) {
	list := &ErrorList{}
	assert.Equal(t, "no errors", list.Error())
	assert.False(t, list.HasErrors())

	list.Add(nil)
	assert.False(t, list.HasErrors())

	list.Add(NewGappingError(domain.ModelHEleve, "dupont", errors.New("too few shots")))
	assert.True(t, list.HasErrors())
	assert.Equal(t, "[gapping] H_ELEVE dupont: too few shots", list.Error())

	list.Add(NewBuildError(domain.ModelG, domain.ScopeGroup, "", "empty pool", nil))
	assert.Equal(t, "multiple errors: 2 errors occurred", list.Error())

	assert.Len(t, list.GetByModel(domain.ModelHEleve), 1)
	assert.Len(t, list.GetByModel(domain.ModelA), 0)
	assert.Len(t, list.GetByPlayer("dupont"), 1)
}
