package transfer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategory(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		name     string
		fatal    bool
	}{
		{ErrorCategoryNone, "None", false},
		{ErrorCategoryInput, "Input", false},
		{ErrorCategoryQuery, "Query", false},
		{ErrorCategoryLoad, "Load", true},
		{ErrorCategoryInitialization, "Initialization", true},
		{ErrorCategoryConnection, "Connection", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.category.String())
			assert.Equal(t, tt.fatal, tt.category.Fatal())
		})
	}
	assert.Equal(t, "Unknown(42)", ErrorCategory(42).String())
}

func TestPhaseError(t *testing.T) {
	cause := errors.New("constraint violated")
	err := NewPhaseError(ErrorCategoryLoad, PhaseIncome, cause).WithRow("g-7")

	assert.Equal(t, "income (guid g-7): constraint violated", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("run failed: %w", err)
	assert.Equal(t, ErrorCategoryLoad, CategoryOf(wrapped))
	assert.Equal(t, ErrorCategoryInitialization, CategoryOf(cause))
	assert.Equal(t, ErrorCategoryNone, CategoryOf(nil))
}
