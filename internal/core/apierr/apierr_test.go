package apierr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
		wantField  string
		wantMsg    string
	}{
		{
			name:       "detail shape",
			body:       `{"detail":"Credenciales incorrectas"}`,
			wantDetail: "Credenciales incorrectas",
		},
		{
			name:      "field errors shape",
			body:      `{"email":["user with this email already exists."]}`,
			wantField: "email",
			wantMsg:   "user with this email already exists.",
		},
		{
			name:      "non field errors",
			body:      `{"non_field_errors":["Unable to log in."]}`,
			wantField: "non_field_errors",
			wantMsg:   "Unable to log in.",
		},
		{
			name: "empty body",
			body: "",
		},
		{
			name: "unrecognized shape",
			body: `["not","a","map"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Decode(http.StatusBadRequest, []byte(tt.body))
			require.NotNil(t, e)

			assert.Equal(t, http.StatusBadRequest, e.StatusCode)
			assert.Equal(t, tt.wantDetail, e.Detail)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantMsg, e.Field(tt.wantField))
			}
		})
	}
}

func TestField_missing_returns_empty(t *testing.T) {
	e := Decode(http.StatusBadRequest, []byte(`{"email":["taken"]}`))
	assert.Empty(t, e.Field("password"))
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("create token: %w", Decode(http.StatusUnauthorized, nil))

	assert.True(t, IsUnauthorized(err), "unwraps through fmt.Errorf chains")
	assert.False(t, IsStatus(err, http.StatusBadRequest))
	assert.False(t, IsUnauthorized(fmt.Errorf("plain")))
}
