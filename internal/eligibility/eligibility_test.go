package eligibility

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/pkg/clients"
)

func TestClient_Check(t *testing.T) {
	creatorID := uuid.MustParse("7d6f0a3e-1c55-4b7e-9a43-5e2f1f0d9c11")
	url := "http://eligibility/api/creators/" + creatorID.String() + "/payout-eligibility"

	tests := []struct {
		name          string
		status        int
		body          string
		transportErr  error
		expected      *domain.Eligibility
		expectedError string
	}{
		{
			name:     "Eligible creator",
			status:   http.StatusOK,
			body:     `{"eligible":true,"missing_requirements":[],"destination":"acct_1"}`,
			expected: &domain.Eligibility{Eligible: true, MissingRequirements: []string{}, Destination: "acct_1"},
		},
		{
			name:   "Missing KYC",
			status: http.StatusOK,
			body:   `{"eligible":false,"missing_requirements":["kyc_verified","bank_details"]}`,
			expected: &domain.Eligibility{
				MissingRequirements: []string{"kyc_verified", "bank_details"},
			},
		},
		{
			name:     "Eligible flag contradicted by requirements",
			status:   http.StatusOK,
			body:     `{"eligible":true,"missing_requirements":["email_verified"]}`,
			expected: &domain.Eligibility{MissingRequirements: []string{"email_verified"}},
		},
		{
			name:     "Unknown creator",
			status:   http.StatusNotFound,
			expected: &domain.Eligibility{MissingRequirements: []string{RequirementCreatorProfile}},
		},
		{
			name:          "Malformed body",
			status:        http.StatusOK,
			body:          `{`,
			expectedError: "failed to parse eligibility response: unexpected end of JSON input",
		},
		{
			name:          "Server error",
			status:        http.StatusInternalServerError,
			expectedError: "eligibility system returned unexpected status 500",
		},
		{
			name:          "Transport error",
			transportErr:  errors.New("connection refused"),
			expectedError: "eligibility request for creator " + creatorID.String() + ": connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			httpClient := clients.NewMockHTTPClientI(ctrl)
			httpClient.EXPECT().Get(gomock.Any(), url, gomock.Any()).Return(tt.status, []byte(tt.body), nil, tt.transportErr)

			got, err := New("http://eligibility", httpClient).Check(context.Background(), creatorID)

			if tt.expectedError != "" {
				assert.EqualError(t, err, tt.expectedError)
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
