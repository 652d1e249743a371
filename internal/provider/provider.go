// Package provider submits payouts to the external payment provider.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/pkg/clients"
)

// ErrRejected marks a 4xx answer: the provider refused the transfer and will not pay it.
var ErrRejected = domain.ErrTransferRejected

type TransferRequest struct {
	PayoutID      string `json:"payout_id"`
	CreatorID     string `json:"creator_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Destination   string `json:"destination"`
}

type Client struct {
	url    string
	client clients.HTTPClientI
}

func New(url string, client clients.HTTPClientI) *Client {
	return &Client{url: url, client: client}
}

// SubmitTransfer hands a payout to the provider. The provider deduplicates on payout_id,
// so a conflict means an earlier attempt already got through. Only a 4xx refusal wraps
// ErrRejected; timeouts, throttling and 5xx answers leave the outcome unknown.
func (c *Client) SubmitTransfer(ctx context.Context, transfer domain.Transfer) error {
	body, err := json.Marshal(TransferRequest{
		PayoutID:      transfer.PayoutID.String(),
		CreatorID:     transfer.CreatorID.String(),
		Amount:        transfer.Amount.StringFixed(2),
		PaymentMethod: transfer.PaymentMethod,
		Destination:   transfer.Destination,
	})
	if err != nil {
		return err
	}

	headers := http.Header{
		"Content-Type":    []string{"application/json"},
		"Idempotency-Key": []string{transfer.PayoutID.String()},
	}
	statusCode, respBody, _, err := c.client.Post(ctx, c.url+"/api/transfers", headers, body)
	if err != nil {
		return fmt.Errorf("submit transfer %s: %w", transfer.PayoutID, err)
	}

	switch {
	case statusCode == http.StatusOK, statusCode == http.StatusCreated, statusCode == http.StatusAccepted,
		statusCode == http.StatusConflict:
		return nil
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("payment provider returned status %d", statusCode)
	case statusCode >= 400 && statusCode < 500:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, statusCode, string(respBody))
	default:
		return fmt.Errorf("payment provider returned unexpected status %d", statusCode)
	}
}
