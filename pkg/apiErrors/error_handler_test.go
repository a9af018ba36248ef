package apiErrors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		details    any
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Deve mapear relatório desconhecido para 404",
			code:       ErrReportNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"REP_001","message":"mensagem"}`,
		},
		{
			name:       "Deve incluir detalhes",
			code:       ErrNoData,
			details:    map[string]string{"report": "wbr"},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"code":"REP_002","message":"mensagem","details":{"report":"wbr"}}`,
		},
		{
			name:       "Deve usar 500 para código desconhecido",
			code:       "XYZ_999",
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"XYZ_999","message":"mensagem"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			WriteError(rec, tt.code, "mensagem", tt.details)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
