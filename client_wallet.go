package fantasy11

import (
	"context"
	"net/http"
)

func (c *Client) WalletBalance(ctx context.Context) (float64, error) {
	var resp balanceResponse
	if err := c.call(ctx, "wallet_balance", http.MethodGet, "/wallet/balance", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Transactions lists wallet movements, newest first as ordered by the backend.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	var resp transactionsResponse
	if err := c.call(ctx, "transactions", http.MethodGet, "/wallet/transactions", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Transactions == nil {
		resp.Transactions = []Transaction{}
	}
	return resp.Transactions, nil
}

// AddMoney credits amount to the wallet. Non-positive amounts are rejected locally.
func (c *Client) AddMoney(ctx context.Context, amount float64) (*MessageResponse, error) {
	if err := validateAmount("add_money", amount); err != nil {
		c.rejectLocally(err)
		return nil, err
	}

	var resp MessageResponse
	if err := c.call(ctx, "add_money", http.MethodPost, "/wallet/add-money", addMoneyRequest{Amount: amount}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
