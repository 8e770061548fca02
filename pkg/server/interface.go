/*
Package server exposes the suggestion service to clients.

Two front ends share one suggest.Suggester:

HTTP, for browsers doing type-ahead:

	GET /suggest?q=caf  ->  ["café","cafeteria"]

Failures of the completion index answer 503, deadlines 504, both with a JSON
body {"error": "..."}. Clients always get an array on success, possibly empty.

msgpack IPC over stdin/stdout, for editors and local tools. Each request is
one msgpack map:

	{"id": "req_001", "p": "caf"}

and gets one response, ranked in backend order:

	{"id": "req_001", "s": [{"w": "café", "r": 1}, {"w": "cafeteria", "r": 2}], "c": 2, "t": 145}

t is the lookup time in microseconds. Errors are sent as {"id", "e", "c"}
with an HTTP-like status code.
*/
package server

// CompletionRequest - minimal completion request
type CompletionRequest struct {
	ID     string `msgpack:"id"`
	Prefix string `msgpack:"p"`
}

// CompletionSuggestion - one ranked suggestion
type CompletionSuggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// CompletionError holds basic error information for completion requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// ErrorResponse is the JSON body of HTTP errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
