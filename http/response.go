package http

import (
	"encoding/json"
	"net/http"

	"github.com/quantonganh/newsletter"
)

var envelopeHeaders = []string{
	newsletter.HeaderIDCreated,
	newsletter.HeaderIDFound,
	newsletter.HeaderFoundAmount,
}

// writeEnvelope writes the envelope with its code as status.
// Payload entries named like a response header are also sent as headers.
func writeEnvelope(w http.ResponseWriter, env newsletter.Envelope) {
	for _, h := range envelopeHeaders {
		if v, ok := env.Payload[h]; ok {
			w.Header().Set(h, v)
		}
	}
	writeJSONResponse(w, env.Code, env)
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(response)
}
