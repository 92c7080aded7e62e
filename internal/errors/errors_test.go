package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := stderrors.New("open data/orders.csv: no such file or directory")
	err := NewDataUnavailableError("data/orders.csv", cause)

	assert.True(t, stderrors.Is(err, ErrDataUnavailable))
	assert.Contains(t, err.Error(), "DATASET")
	assert.Contains(t, err.Error(), "data/orders.csv")

	var appErr *AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrTypeDataset, appErr.Type)
}

func TestInvalidAggregationError(t *testing.T) {
	err := NewInvalidAggregationError("sum", "City")

	assert.True(t, stderrors.Is(err, ErrInvalidAggregation))
	assert.False(t, stderrors.Is(err, ErrDataUnavailable))
	assert.Contains(t, err.Error(), `"City"`)
}

func TestUnknownColumnError(t *testing.T) {
	err := NewUnknownColumnError("Discount")

	assert.True(t, stderrors.Is(err, ErrUnknownColumn))
	assert.Equal(t, ErrTypeValidation, err.Type)
}

func TestWithContext(t *testing.T) {
	err := NewParsingError("bad row", nil).
		WithContext("row", 17).
		WithContext("column", "Age")

	assert.Equal(t, 17, err.Context["row"])
	assert.Equal(t, "Age", err.Context["column"])
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no data maps to 422",
			err:        fmt.Errorf("summary: %w", ErrNoData),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "NO_DATA",
		},
		{
			name:       "invalid aggregation maps to 400",
			err:        NewInvalidAggregationError("mean", "Gender"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_AGGREGATION",
		},
		{
			name:       "unknown column maps to 400",
			err:        NewUnknownColumnError("Nope"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_COLUMN",
		},
		{
			name:       "dataset unavailable maps to 503",
			err:        NewDataUnavailableError("orders.csv", stderrors.New("gone")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "DATASET_UNAVAILABLE",
		},
		{
			name:       "existing APIError passes through",
			err:        ErrValidation("x_column", "required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "unclassified errors become 500",
			err:        stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ToAPIError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}
