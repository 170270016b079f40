//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	openapi "github.com/getkin/kin-openapi/openapi3"
)

// Loader loads an OpenAPI document from some source.
type Loader interface {
	// Load loads the OpenAPI document.
	Load(ctx context.Context) (*openapi.T, error)
}

type dataSpecLoader struct {
	r io.Reader
}

// Load loads the OpenAPI document from an io.Reader.
func (d *dataSpecLoader) Load(ctx context.Context) (*openapi.T, error) {
	loader := openapi.Loader{Context: ctx}
	return loader.LoadFromIoReader(d.r)
}

// NewDataLoader creates a loader reading the document from r.
func NewDataLoader(r io.Reader) Loader {
	return &dataSpecLoader{r: r}
}

type fileSpecLoader struct {
	path string
}

// Load loads the OpenAPI document from a file.
func (f *fileSpecLoader) Load(ctx context.Context) (*openapi.T, error) {
	loader := openapi.Loader{Context: ctx}
	return loader.LoadFromFile(f.path)
}

// NewFileLoader creates a loader reading the document from a file path.
func NewFileLoader(path string) Loader {
	return &fileSpecLoader{path: path}
}

// FetchError reports a non-2xx response while fetching a document.
type FetchError struct {
	// URL is the fetched URL.
	URL string
	// StatusCode is the HTTP status of the failed response.
	StatusCode int
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch spec from %s: HTTP %d", e.URL, e.StatusCode)
}

type urlSpecLoader struct {
	url    string
	client *http.Client
}

// Load fetches the OpenAPI document over HTTP. Non-2xx responses fail
// with a *FetchError carrying the status code so callers can decide
// whether a retry makes sense.
func (u *urlSpecLoader) Load(ctx context.Context) (*openapi.T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: u.url, StatusCode: resp.StatusCode}
	}

	loader := openapi.Loader{Context: ctx}
	return loader.LoadFromIoReader(resp.Body)
}

// NewURLLoader creates a loader fetching the document from a URL.
// A nil client falls back to http.DefaultClient.
func NewURLLoader(url string, client *http.Client) Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &urlSpecLoader{url: url, client: client}
}
