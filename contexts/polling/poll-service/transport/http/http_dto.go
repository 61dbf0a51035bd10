package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePollRequest struct {
	Title             string   `json:"title"`
	Options           []string `json:"options"`
	EndDate           string   `json:"end_date"` // RFC 3339
	MinAge            int      `json:"min_age"`
	Location          string   `json:"location"`
	MinTokensRequired uint64   `json:"min_tokens_required"`
	TotalSupply       uint64   `json:"total_supply"`
}

type CastVotesRequest struct {
	OptionIndexes []int    `json:"option_indexes"`
	Amounts       []uint64 `json:"amounts"`
}

type AuthorizedVotesRequest struct {
	OptionIndexes []int    `json:"option_indexes"`
	Amounts       []uint64 `json:"amounts"`
	Holder        string   `json:"holder"`
	Spender       string   `json:"spender"`
	AssetID       string   `json:"asset_id"`
	Amount        uint64   `json:"amount"`
	Nonce         uint64   `json:"nonce"`
	ExpiryUnix    int64    `json:"expiry_unix"`
	// Hex-encoded sr25519 signature over the canonical ticket message.
	Signature string `json:"signature"`
}

type EligibilityPayload struct {
	MinAge            int    `json:"min_age"`
	Location          string `json:"location"`
	MinTokensRequired uint64 `json:"min_tokens_required"`
}

type PollResponse struct {
	PollID      string             `json:"poll_id"`
	AssetID     string             `json:"asset_id"`
	Title       string             `json:"title"`
	Options     []string           `json:"options"`
	EndDate     string             `json:"end_date"`
	Eligibility EligibilityPayload `json:"eligibility"`
	TotalSupply uint64             `json:"total_supply"`
	Open        bool               `json:"open"`
	CreatedBy   string             `json:"created_by"`
}

type PollListResponse struct {
	Polls []PollResponse `json:"polls"`
}

type OptionResultPayload struct {
	Index  int    `json:"index"`
	Option string `json:"option"`
	Votes  uint64 `json:"votes"`
}

type ResultsResponse struct {
	PollID  string                `json:"poll_id"`
	Results []OptionResultPayload `json:"results"`
}
