package signature

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) {
	return 0, errors.New("simulated read error")
}

func TestSign(t *testing.T) {
	sig := Sign([]byte("secret"), []byte(`{"a":1}`))
	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.Len(t, sig, len("sha256=")+64)
	assert.True(t, Valid([]byte("secret"), []byte(`{"a":1}`), Sign([]byte("secret"), []byte(`{"a":1}`))))
	assert.False(t, Valid([]byte("secret"), []byte(`{"a":2}`), Sign([]byte("secret"), []byte(`{"a":1}`))))
	assert.False(t, Valid([]byte("other"), []byte(`{"a":1}`), Sign([]byte("secret"), []byte(`{"a":1}`))))
	assert.False(t, Valid([]byte("secret"), []byte(`{"a":1}`), "sha256=zz"))
	assert.False(t, Valid([]byte("secret"), []byte(`{"a":1}`), "md5=abc"))
}

func TestMiddleware(t *testing.T) {
	body := `{"purchase_id":"p-1"}`

	tests := []struct {
		name         string
		body         io.Reader
		header       string
		expectedCode int
	}{
		{
			name:         "Valid signature",
			body:         strings.NewReader(body),
			header:       Sign([]byte("secret"), []byte(body)),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Missing signature",
			body:         strings.NewReader(body),
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Tampered body",
			body:         strings.NewReader(`{"purchase_id":"p-2"}`),
			header:       Sign([]byte("secret"), []byte(body)),
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Unreadable body",
			body:         errorReader{},
			header:       Sign([]byte("secret"), []byte(body)),
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.Equal(t, body, string(got))
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/internal/purchases/completed", tt.body)
			if tt.header != "" {
				req.Header.Set(Header, tt.header)
			}
			w := httptest.NewRecorder()
			Middleware("secret")(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
