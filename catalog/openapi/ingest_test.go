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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customersSpec = `{
	"openapi": "3.0.0",
	"info": {"title": "CRM API", "description": "Customer records"},
	"servers": [{"url": "https://api.x.com"}],
	"paths": {
		"/customers": {
			"get": {"summary": "List customers"},
			"post": {
				"operationId": "createCustomer",
				"summary": "Create customer",
				"requestBody": {
					"content": {
						"application/json": {
							"schema": {
								"type": "object",
								"properties": {
									"name": {"type": "string"},
									"email": {"type": "string"}
								}
							}
						}
					}
				}
			}
		},
		"/customers/{id}": {
			"get": {
				"summary": "Get customer",
				"parameters": [
					{"name": "id", "in": "path", "required": true, "description": "Customer id"},
					{"name": "expand", "in": "query"},
					{"name": "X-Trace", "in": "header"}
				]
			}
		}
	}
}`

func TestIngest_PathsAndVerbs(t *testing.T) {
	svc, err := IngestReader(context.Background(), strings.NewReader(customersSpec), "crm")
	require.NoError(t, err)

	assert.Equal(t, "crm", svc.ID)
	assert.Equal(t, "CRM API", svc.Name)
	assert.Equal(t, "Customer records", svc.Description)
	require.Len(t, svc.Operations, 3)

	var listOp, createOp, getOp string
	for _, op := range svc.Operations {
		switch op.Name {
		case "List customers":
			listOp = op.ID
			assert.Equal(t, http.MethodGet, op.Method)
			assert.Equal(t, "https://api.x.com/customers", op.URLTemplate)
		case "Create customer":
			createOp = op.ID
			assert.Equal(t, "crm-createCustomer", op.ID)
			var keys []string
			for _, p := range op.Params {
				keys = append(keys, p.Key)
			}
			assert.Equal(t, []string{"email", "name"}, keys)
		case "Get customer":
			getOp = op.ID
			require.Len(t, op.Params, 2, "header parameters are not collected")
			assert.Equal(t, "id", op.Params[0].Key)
			assert.True(t, op.Params[0].Required)
			assert.Equal(t, "expand", op.Params[1].Key)
		}
	}
	assert.NotEmpty(t, listOp)
	assert.NotEmpty(t, createOp)
	assert.NotEmpty(t, getOp)
}

func TestIngest_UniqueOperationIDs(t *testing.T) {
	svc, err := IngestReader(context.Background(), strings.NewReader(customersSpec), "crm")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, op := range svc.Operations {
		assert.False(t, seen[op.ID], "duplicate operation id %s", op.ID)
		seen[op.ID] = true
	}
}

func TestIngest_Idempotent(t *testing.T) {
	first, err := IngestReader(context.Background(), strings.NewReader(customersSpec), "crm")
	require.NoError(t, err)
	second, err := IngestReader(context.Background(), strings.NewReader(customersSpec), "crm")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIngest_DerivedServiceID(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	svc, err := IngestReader(context.Background(), strings.NewReader(customersSpec), "",
		withNow(func() time.Time { return fixed }))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(svc.ID, "openapi-crm-api-"), "got %s", svc.ID)
	// Operation ids are namespaced by the derived service id.
	for _, op := range svc.Operations {
		assert.True(t, strings.HasPrefix(op.ID, svc.ID+"-"))
	}
}

func TestIngest_KeywordCap(t *testing.T) {
	spec := `{
		"openapi": "3.0.0",
		"info": {"title": "Wordy"},
		"paths": {
			"/things": {
				"get": {
					"summary": "alpha beta gamma delta epsilon",
					"description": "zeta eta theta iota kappa lambda omicron sigma"
				}
			}
		}
	}`
	svc, err := IngestReader(context.Background(), strings.NewReader(spec), "wordy")
	require.NoError(t, err)
	require.Len(t, svc.Operations, 1)
	assert.Len(t, svc.Operations[0].IntentKeywords, 10)

	svc, err = IngestReader(context.Background(), strings.NewReader(spec), "wordy",
		WithMaxIntentKeywords(4))
	require.NoError(t, err)
	assert.Len(t, svc.Operations[0].IntentKeywords, 4)
}

func TestIngest_FallbackNameWithoutServers(t *testing.T) {
	spec := `{
		"openapi": "3.0.0",
		"info": {"title": "Bare"},
		"paths": {"/ping": {"post": {}}}
	}`
	svc, err := IngestReader(context.Background(), strings.NewReader(spec), "bare")
	require.NoError(t, err)
	require.Len(t, svc.Operations, 1)
	op := svc.Operations[0]
	assert.Equal(t, "POST /ping", op.Name)
	assert.Equal(t, "/ping", op.URLTemplate)
	assert.Equal(t, "bare-post-ping", op.ID)
}

func TestFetchAndIngest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(customersSpec))
	}))
	defer srv.Close()

	svc, err := FetchAndIngest(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)
	assert.Len(t, svc.Operations, 3)
	assert.True(t, strings.HasPrefix(svc.ID, "openapi-url-"))
}

func TestFetchAndIngest_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := FetchAndIngest(context.Background(), srv.URL, srv.Client())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "get-customers", slug("get-/customers"))
	assert.Equal(t, "my-api-v2", slug("My API (v2)"))
	assert.Equal(t, "x", slug("--x--"))
}
