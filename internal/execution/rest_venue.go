package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skeller88/cycle/internal/domain"
	"github.com/skeller88/cycle/internal/infra"
)

// RestVenue submits orders to a live exchange's REST order endpoint.
type RestVenue struct {
	baseURL    string
	httpClient *http.Client
	limiter    *infra.RateLimiter
}

// NewRestVenue creates a venue for the configured exchange.
func NewRestVenue(cfg *infra.Config) *RestVenue {
	burst := int(cfg.Exchange.MaxRequestsPerSec)
	if burst < 1 {
		burst = 1
	}
	return &RestVenue{
		baseURL:    cfg.Exchange.RestURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    infra.NewRateLimiter(burst, cfg.Exchange.MaxRequestsPerSec),
	}
}

type wireOrder struct {
	ID     string `json:"id"`
	Pair   string `json:"pair"`
	Side   string `json:"side"`
	Amount string `json:"amount"`
	Price  string `json:"price"`
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
}

// PlaceOrder posts a limit order.
func (v *RestVenue) PlaceOrder(ctx context.Context, order domain.Order) error {
	body, err := json.Marshal(wireOrder{
		ID:     order.ID,
		Pair:   order.PairName(),
		Side:   string(order.Side),
		Amount: order.Amount.String(),
		Price:  order.Price.String(),
		Type:   "LIMIT",
	})
	if err != nil {
		return err
	}

	v.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("venue rejected order: status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// FetchOrderStatus queries the venue for an order's status.
func (v *RestVenue) FetchOrderStatus(ctx context.Context, orderID string) (string, error) {
	v.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/v1/orders/"+orderID, nil)
	if err != nil {
		return "", err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching order status: status %d", resp.StatusCode)
	}

	var out wireOrder
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Status, nil
}
