package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bibliobot/bibliobot-server/internal/errors"
	"github.com/bibliobot/bibliobot-server/internal/validation"
)

type TestRequest struct {
	Query  string `json:"q" validate:"required,min=3,max=200"`
	Mode   string `json:"mode,omitempty" validate:"omitempty,oneof=any title author"`
	Offset int    `json:"offset" validate:"gte=0"`
	Limit  int    `json:"limit" validate:"min=1,max=50"`
}

type TestSettings struct {
	BatchSize int    `env:"CATALOG_BACKFILL_BATCH" validate:"min=1"`
	Backend   string `env:"SESSION_BACKEND" validate:"oneof=memory badger"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{Query: "война и мир", Mode: "title", Offset: 10, Limit: 10}

	assert.NoError(t, v.Validate(req))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	//nolint:govet // fieldalignment: test table
	tests := []struct {
		name        string
		req         TestRequest
		wantField   string
		wantMessage string
	}{
		{
			name:        "missing query",
			req:         TestRequest{Limit: 10},
			wantField:   "q",
			wantMessage: "is required",
		},
		{
			name:        "short query",
			req:         TestRequest{Query: "ab", Limit: 10},
			wantField:   "q",
			wantMessage: "must be at least 3 characters",
		},
		{
			name:        "unknown mode",
			req:         TestRequest{Query: "война", Mode: "isbn", Limit: 10},
			wantField:   "mode",
			wantMessage: "must be one of: any title author",
		},
		{
			name:        "negative offset",
			req:         TestRequest{Query: "война", Offset: -1, Limit: 10},
			wantField:   "offset",
			wantMessage: "must be greater than or equal to 0",
		},
		{
			name:        "limit too large",
			req:         TestRequest{Query: "война", Limit: 500},
			wantField:   "limit",
			wantMessage: "must not exceed 50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMessage, details[tt.wantField])
		})
	}
}

func TestValidator_EnvFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(TestSettings{BatchSize: 0, Backend: "redis"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	details := domainErr.Details.(map[string]string)
	assert.Equal(t, "must be at least 1", details["CATALOG_BACKFILL_BATCH"])
	assert.Equal(t, "must be one of: memory badger", details["SESSION_BACKEND"])
	assert.NotContains(t, details, "BatchSize")
}
