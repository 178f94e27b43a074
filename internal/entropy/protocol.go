package entropy

import (
	"encoding/json"
	"strings"
)

const (
	rpcVersion = "2.0"
	rpcMethod  = "generateStrings"

	hexDigits = "0123456789abcdef"
	// Each sample is one byte rendered as two hex characters.
	sampleWidth = 2
)

// Request is the JSON-RPC body sent to the entropy service.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  RequestParams `json:"params"`
	ID      int64         `json:"id"`
}

// RequestParams carries the API key and the number of byte samples wanted.
type RequestParams struct {
	APIKey      string `json:"apiKey"`
	N           int    `json:"n"`
	Length      int    `json:"length"`
	Characters  string `json:"characters"`
	Replacement bool   `json:"replacement"`
}

// NewRequest builds a request for sampleCount hex-byte samples.
func NewRequest(apiKey string, sampleCount int, id int64) Request {
	return Request{
		JSONRPC: rpcVersion,
		Method:  rpcMethod,
		Params: RequestParams{
			APIKey:      apiKey,
			N:           sampleCount,
			Length:      sampleWidth,
			Characters:  hexDigits,
			Replacement: true,
		},
		ID: id,
	}
}

// Response is either a result or an error; the service populates one of them.
type Response struct {
	Result *RPCResult      `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
	ID     json.RawMessage `json:"id,omitempty"`
}

type RPCResult struct {
	Random RandomData `json:"random"`
}

// RandomData holds the raw tokens so quoting can be stripped uniformly
// whether the service sends strings or bare numbers.
type RandomData struct {
	Data []json.RawMessage `json:"data"`
}

type ResponseError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// HexString joins the returned samples into one hex string. It reports false
// if any sample is not exactly one two-digit hex byte.
func (r RandomData) HexString() (string, bool) {
	var sb strings.Builder
	sb.Grow(len(r.Data) * sampleWidth)
	for _, raw := range r.Data {
		tok := strings.ReplaceAll(string(raw), `"`, "")
		if len(tok) != sampleWidth || strings.Trim(tok, hexDigits) != "" {
			return "", false
		}
		sb.WriteString(tok)
	}
	return sb.String(), true
}

// sampleCount returns the even character count to request and the number
// of samples covering it. Odd lengths are rounded up by one.
func sampleCount(length int) (requested, samples int) {
	requested = length
	if length%2 != 0 {
		requested++
	}
	return requested, requested / sampleWidth
}
