// cmd/api/helpers.go
// This file contains general-purpose helper functions for the application.
// Error-response helpers live in errors.go; only non-error utilities are here.
package main

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/inlibris/inlibris/internal/mason"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
)

// json is a drop-in replacement for encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errNotJSON signals that a mutating request did not declare a JSON body.
// Handlers translate it into a 415 response.
var errNotJSON = errors.New("request body must be JSON")

// readIDParam extracts and validates a named URL parameter added by httprouter.
// Returns an error if the value is missing, non-numeric, or less than 1.
func (app *applicationDependencies) readIDParam(r *http.Request, name string) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return id, nil
}

// writeMason marshals the document to indented JSON, applies any custom
// headers, sets the Mason content type, writes the status code, and streams
// the body to the client.
func (app *applicationDependencies) writeMason(w http.ResponseWriter, status int, body mason.Document, headers http.Header) error {
	js, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return err
	}
	js = append(js, '\n') // Trailing newline makes curl output nicer.

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", mason.MediaType)
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readJSON decodes a single JSON value from the request body into dst.
// It returns errNotJSON when the Content-Type is not JSON, enforces a 1 MB
// size limit, rejects unknown fields, and ensures the body contains exactly
// one JSON value (no trailing data).
func (app *applicationDependencies) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errNotJSON
	}

	// Cap the request body to 1 MB to prevent large-payload attacks.
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields() // Reject fields not present in dst.

	err = dec.Decode(dst)
	if err != nil {
		return err
	}

	// Ensure there is no second JSON value in the body.
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}
