package backend

// TradeResponse 为下单类接口的统一响应。传输成功不代表业务成功，
// 以 Success 字段为准。
type TradeResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ClosePositionPayload 为 POST /positions/close 的请求体。
type ClosePositionPayload struct {
	UserID          string `json:"userId"`
	PositionKey     string `json:"positionKey"`
	MarketAddress   string `json:"marketAddress"`
	SizeDeltaUSD    string `json:"sizeDeltaUsd"`
	AcceptablePrice string `json:"acceptablePrice"`
	IsLong          bool   `json:"isLong"`
	ChainID         int64  `json:"chainId"`
}

// errorBody 为非 2xx 响应的结构化错误体。
type errorBody struct {
	Error string `json:"error"`
}
