package yahoo

// optionsResponse es la respuesta de /v7/finance/options/{symbol}.
type optionsResponse struct {
	OptionChain struct {
		Result []chainResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"optionChain"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chainResult struct {
	UnderlyingSymbol string        `json:"underlyingSymbol"`
	ExpirationDates  []int64       `json:"expirationDates"`
	Quote            quote         `json:"quote"`
	Options          []expiryChain `json:"options"`
}

type quote struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

type expiryChain struct {
	ExpirationDate int64       `json:"expirationDate"`
	Puts           []optionDTO `json:"puts"`
}

// optionDTO es un contrato tal como lo publica el feed. Los numéricos son
// punteros porque el feed omite campos sin dato.
type optionDTO struct {
	ContractSymbol    string   `json:"contractSymbol"`
	Strike            *float64 `json:"strike"`
	LastPrice         *float64 `json:"lastPrice"`
	Volume            *int64   `json:"volume"`
	OpenInterest      *int64   `json:"openInterest"`
	ImpliedVolatility *float64 `json:"impliedVolatility"`
	Expiration        int64    `json:"expiration"`
	InTheMoney        bool     `json:"inTheMoney"`
}
