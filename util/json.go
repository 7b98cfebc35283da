// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	v1 "github.com/decred/peermall/api/v1"
)

// RespondWithData writes a successful reply envelope that wraps payload.
func RespondWithData(w http.ResponseWriter, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, v1.Reply{
		Success: true,
		Data:    data,
	})
}

// RespondWithError writes a failed reply envelope with the provided
// message.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, v1.Reply{
		Success: false,
		Message: message,
	})
}

// RespondWithJSON writes the JSON encoded payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// FormatJSON returns a pretty printed JSON string for the provided
// structure.
func FormatJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("MarshalIndent: %v", err)
	}
	return string(b)
}
