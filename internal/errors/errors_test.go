package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppError(ErrTypeStorage, "failed to write report", nil),
			want: "[STORAGE] failed to write report",
		},
		{
			name: "with cause",
			err:  NewAppError(ErrTypeTransport, "upload failed", errors.New("connection refused")),
			want: "[TRANSPORT] upload failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewAppError(ErrTypeStorage, "wrapper", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, fmt.Errorf("outer: %w", err), cause)
}

func TestNewInputShapeError(t *testing.T) {
	err := NewInputShapeError("inventory export", []string{"Product Code", "Arrival Date"})

	assert.Equal(t, ErrTypeInputShape, err.Type)
	assert.Contains(t, err.Error(), "Product Code, Arrival Date")
	assert.Equal(t, []string{"Product Code", "Arrival Date"}, err.Context["missing_columns"])
	assert.True(t, IsType(err, ErrTypeInputShape))
	assert.False(t, IsType(err, ErrTypeTransport))
}

func TestNewDataQualityError(t *testing.T) {
	err := NewDataQualityError("arrival date cells degraded to zero value").
		WithContext("cell_count", 3)

	assert.Equal(t, ErrTypeDataQuality, err.Type)
	assert.Equal(t, "[DATA_QUALITY] arrival date cells degraded to zero value", err.Error())
	assert.Equal(t, 3, err.Context["cell_count"])
}

func TestIsType_WrappedError(t *testing.T) {
	inner := NewTransportError("slack upload failed", errors.New("timeout"))
	wrapped := fmt.Errorf("publish report: %w", inner)

	assert.True(t, IsType(wrapped, ErrTypeTransport))
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "input shape error",
			err:        NewInputShapeError("inventory export", []string{"PICKING KEY7"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INPUT_SHAPE_ERROR",
		},
		{
			name:       "empty result",
			err:        fmt.Errorf("run analysis: %w", ErrNoRecords),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "EMPTY_RESULT",
		},
		{
			name:       "transport error",
			err:        NewTransportError("upload rejected", nil),
			wantStatus: http.StatusBadGateway,
			wantCode:   "TRANSPORT_ERROR",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ToAPIError(tt.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}
