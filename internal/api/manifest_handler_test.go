package api_test

import (
	"net/http"
	"testing"

	"github.com/phrazzld/srsforge/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateManifest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		wantStatus    int
		wantValid     bool
		wantReqs      int
		wantInvalid   []string
		wantConflicts int
	}{
		{
			name:       "valid",
			body:       "# web\nfastapi>=0.110.0\nuvicorn==0.29.0\n",
			wantStatus: http.StatusOK,
			wantValid:  true,
			wantReqs:   2,
		},
		{
			name:        "malformed lines",
			body:        "fastapi>=0.110.0\nnot a requirement\n",
			wantStatus:  http.StatusOK,
			wantInvalid: []string{"not a requirement"},
		},
		{
			name:          "conflicting pins",
			body:          "pydantic==2.6.0\npydantic==1.10.0\n",
			wantStatus:    http.StatusOK,
			wantReqs:      2,
			wantConflicts: 1,
		},
		{
			name:       "empty body",
			body:       "  \n",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t)

			rec := srv.do(t, http.MethodPost, "/api/manifests/validate", "text/plain", []byte(tc.body), false)

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus != http.StatusOK {
				return
			}
			resp := decodeBody[api.ManifestValidationResponse](t, rec)
			assert.Equal(t, tc.wantValid, resp.Valid)
			assert.Equal(t, tc.wantReqs, resp.Requirements)
			assert.Equal(t, tc.wantInvalid, resp.InvalidLines)
			assert.Len(t, resp.Conflicts, tc.wantConflicts)
		})
	}
}
