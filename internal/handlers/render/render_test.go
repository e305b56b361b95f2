package render

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_JSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := map[string]any{"key1": 1, "key2": "222"}
		JSON(w, data)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222"}`+"\n", string(body))
}

func TestRender_ServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		message := "something terrible happened"
		ServiceError(w, message, http.StatusForbidden)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{
			"error": "service_error",
			"message": "something terrible happened"
		}`,
		string(body),
	)
}

func TestRender_BindAndValidate(t *testing.T) {
	type request struct {
		Email string `json:"email" validate:"required"`
		Role  string `json:"rol" validate:"required,role"`
	}

	tests := []struct {
		name        string
		requestBody string
		wantStatus  int
		wantInBody  []string
	}{
		{
			name:        "valid request",
			requestBody: `{"email": "laura@example.com", "rol": "docente"}`,
			wantStatus:  http.StatusOK,
		},
		{
			name:        "broken json",
			requestBody: `not-json-at-all`,
			wantStatus:  http.StatusBadRequest,
			wantInBody:  []string{"decoding_failed"},
		},
		{
			name:        "missing field reported under json name",
			requestBody: `{"rol": "docente"}`,
			wantStatus:  http.StatusBadRequest,
			wantInBody:  []string{"validation_failed", `"email"`, "This field is required"},
		},
		{
			name:        "unknown role",
			requestBody: `{"email": "laura@example.com", "rol": "superuser"}`,
			wantStatus:  http.StatusBadRequest,
			wantInBody:  []string{"validation_failed", `"rol"`, "Unknown role"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, err := BindAndValidate[request](w, r)
				if err != nil {
					return
				}
				JSON(w, map[string]string{"status": "ok"})
			}))
			defer ts.Close()

			resp, err := http.Post(ts.URL, "application/json", strings.NewReader(tt.requestBody))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			require.Equalf(t, tt.wantStatus, resp.StatusCode, "Body: %s", string(body))
			for _, want := range tt.wantInBody {
				assert.Contains(t, string(body), want)
			}
		})
	}
}
