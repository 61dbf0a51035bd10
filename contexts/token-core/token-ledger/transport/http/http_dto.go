package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TransferRequest struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	AssetID string   `json:"asset_id"`
	Amounts []uint64 `json:"amounts"`
}

type ApprovalRequest struct {
	Spender  string `json:"spender"`
	Approved bool   `json:"approved"`
}

type ConsumeAuthorizationRequest struct {
	Holder     string `json:"holder"`
	Spender    string `json:"spender"`
	AssetID    string `json:"asset_id"`
	Amount     uint64 `json:"amount"`
	Nonce      uint64 `json:"nonce"`
	ExpiryUnix int64  `json:"expiry_unix"`
	Recipient  string `json:"recipient"`
	// Hex-encoded sr25519 signature over the canonical ticket message.
	Signature string `json:"signature"`
}

type BalanceResponse struct {
	Holder  string `json:"holder"`
	AssetID string `json:"asset_id"`
	Amount  uint64 `json:"amount"`
}

type AssetResponse struct {
	AssetID     string `json:"asset_id"`
	TotalSupply uint64 `json:"total_supply"`
}

type ApprovalResponse struct {
	Owner    string `json:"owner"`
	Spender  string `json:"spender"`
	Approved bool   `json:"approved"`
}
