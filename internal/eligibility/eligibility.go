// Package eligibility asks the identity subsystem whether a creator may be paid out.
package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/pkg/clients"
)

// RequirementCreatorProfile is reported when the identity subsystem does not know the creator.
const RequirementCreatorProfile = "creator_profile"

type Response struct {
	Eligible            bool     `json:"eligible"`
	MissingRequirements []string `json:"missing_requirements"`
	Destination         string   `json:"destination"`
}

type Client struct {
	url    string
	client clients.HTTPClientI
}

func New(url string, client clients.HTTPClientI) *Client {
	return &Client{url: url, client: client}
}

func (c *Client) Check(ctx context.Context, creatorID uuid.UUID) (*domain.Eligibility, error) {
	url := c.url + "/api/creators/" + creatorID.String() + "/payout-eligibility"
	headers := http.Header{"Accept": []string{"application/json"}}

	statusCode, respBody, _, err := c.client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("eligibility request for creator %s: %w", creatorID, err)
	}

	switch statusCode {
	case http.StatusOK:
		var response Response
		if err := json.Unmarshal(respBody, &response); err != nil {
			return nil, fmt.Errorf("failed to parse eligibility response: %w", err)
		}
		return &domain.Eligibility{
			Eligible:            response.Eligible && len(response.MissingRequirements) == 0,
			MissingRequirements: response.MissingRequirements,
			Destination:         response.Destination,
		}, nil
	case http.StatusNotFound:
		zap.L().Warn("creator unknown to eligibility system", zap.String("creator_id", creatorID.String()))
		return &domain.Eligibility{MissingRequirements: []string{RequirementCreatorProfile}}, nil
	default:
		return nil, fmt.Errorf("eligibility system returned unexpected status %d", statusCode)
	}
}
