//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package openapi ingests OpenAPI 3.x documents into the catalog shape
// used for workflow discovery.
package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	openapi "github.com/getkin/kin-openapi/openapi3"

	"trpc.group/trpc-go/trpc-flowgen-go/catalog"
	"trpc.group/trpc-go/trpc-flowgen-go/log"
)

const defaultTitle = "Imported API"

// ingestMethods are the path item verbs turned into catalog operations,
// in the order they are visited for each path.
var ingestMethods = [...]string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

func methodOperations(p *openapi.PathItem) func(yield func(string, *openapi.Operation) bool) {
	ops := [...]*openapi.Operation{
		p.Get,
		p.Post,
		p.Put,
		p.Patch,
		p.Delete,
	}
	return func(yield func(string, *openapi.Operation) bool) {
		for i := range ingestMethods {
			if !yield(ingestMethods[i], ops[i]) {
				return
			}
		}
	}
}

// Option is a functional option for configuring ingestion.
type Option func(*config)

type config struct {
	maxIntentKeywords int
	now               func() time.Time
}

// WithMaxIntentKeywords overrides the cap on derived intent keywords.
func WithMaxIntentKeywords(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIntentKeywords = n
		}
	}
}

// withNow overrides the clock used for derived service ids in tests.
func withNow(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		maxIntentKeywords: catalog.DefaultMaxIntentKeywords,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ingest converts an OpenAPI 3.x document into a catalog service with
// one operation per path and verb combination. When serviceID is empty a
// stable-per-import id is derived from the document title plus a base-36
// timestamp suffix so repeated imports of the same document do not
// collide. Ingesting the same document twice with the same explicit
// serviceID yields operations with identical ids and shapes.
func Ingest(doc *openapi.T, serviceID string, opts ...Option) *catalog.Service {
	cfg := newConfig(opts)

	title := defaultTitle
	description := ""
	if doc.Info != nil {
		if doc.Info.Title != "" {
			title = doc.Info.Title
		}
		description = doc.Info.Description
	}
	if serviceID == "" {
		serviceID = fmt.Sprintf("openapi-%s-%s", slug(title), strconv.FormatInt(cfg.now().UnixMilli(), 36))
	}
	if description == "" {
		description = "Imported from OpenAPI spec"
	}

	baseURL := ""
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		baseURL = doc.Servers[0].URL
	}

	service := &catalog.Service{
		ID:          serviceID,
		Name:        title,
		Description: description,
		AuthType:    "none",
	}

	if doc.Paths == nil {
		return service
	}

	// Map iteration order is not stable; visit paths sorted so repeated
	// ingestion of the same document produces the same service shape.
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	seenIDs := make(map[string]int)
	for _, path := range paths {
		pathItem := pathMap[path]
		if pathItem == nil {
			log.Debugf("openapi ingest: skipping malformed path entry %q", path)
			continue
		}
		methodOperations(pathItem)(func(method string, specOp *openapi.Operation) bool {
			if specOp == nil {
				return true
			}
			service.Operations = append(service.Operations,
				buildOperation(cfg, serviceID, baseURL, path, method, specOp, seenIDs))
			return true
		})
	}
	return service
}

func buildOperation(
	cfg *config,
	serviceID, baseURL, path, method string,
	specOp *openapi.Operation,
	seenIDs map[string]int,
) catalog.Operation {
	name := specOp.Summary
	if name == "" {
		name = specOp.OperationID
	}
	if name == "" {
		name = method + " " + path
	}

	opID := specOp.OperationID
	if opID == "" {
		opID = slug(strings.ToLower(method) + "-" + path)
	}
	uniqueID := serviceID + "-" + opID
	// Duplicate operationIds within one document get an ordinal suffix
	// so ids stay unique within the service.
	if n := seenIDs[uniqueID]; n > 0 {
		seenIDs[uniqueID] = n + 1
		uniqueID = fmt.Sprintf("%s-%d", uniqueID, n+1)
	} else {
		seenIDs[uniqueID] = 1
	}

	description := specOp.Description
	if description == "" {
		description = name
	}

	urlTemplate := path
	if baseURL != "" {
		urlTemplate = resolveURL(baseURL, path)
	}

	return catalog.Operation{
		ID:             uniqueID,
		Name:           name,
		Description:    description,
		Method:         method,
		URLTemplate:    urlTemplate,
		Params:         collectParams(specOp),
		IntentKeywords: deriveKeywords(cfg, name, opID, specOp.Description),
	}
}

// collectParams gathers declared query and path parameters plus JSON
// request-body properties, deduplicated by key.
func collectParams(specOp *openapi.Operation) []catalog.Param {
	var params []catalog.Param
	seen := make(map[string]bool)

	for _, ref := range specOp.Parameters {
		if ref == nil || ref.Value == nil || ref.Value.Name == "" {
			continue
		}
		p := ref.Value
		if p.In != openapi.ParameterInQuery && p.In != openapi.ParameterInPath {
			continue
		}
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		desc := p.Description
		if desc == "" {
			desc = p.Name
		}
		params = append(params, catalog.Param{
			Key:         p.Name,
			Required:    p.Required,
			Description: desc,
		})
	}

	props := jsonBodyProperties(specOp.RequestBody)
	for _, key := range props {
		if seen[key] {
			continue
		}
		seen[key] = true
		params = append(params, catalog.Param{Key: key, Description: key})
	}
	return params
}

func jsonBodyProperties(bodyRef *openapi.RequestBodyRef) []string {
	if bodyRef == nil || bodyRef.Value == nil {
		return nil
	}
	media := bodyRef.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	props := make([]string, 0, len(media.Schema.Value.Properties))
	for key := range media.Schema.Value.Properties {
		props = append(props, key)
	}
	// Map iteration order is random; sort for reproducible operations.
	sort.Strings(props)
	return props
}

// deriveKeywords tokenizes name, id and description into a deduplicated,
// capped keyword list for the intent matcher.
func deriveKeywords(cfg *config, name, opID, description string) []string {
	tokens := catalog.Tokenize(name + " " + opID + " " + description)
	seen := make(map[string]bool, len(tokens))
	keywords := make([]string, 0, cfg.maxIntentKeywords)
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
		if len(keywords) == cfg.maxIntentKeywords {
			break
		}
	}
	return keywords
}

func slug(s string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func resolveURL(base, path string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// IngestReader loads a JSON document from r and ingests it.
func IngestReader(ctx context.Context, r io.Reader, serviceID string, opts ...Option) (*catalog.Service, error) {
	doc, err := NewDataLoader(r).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load spec: %w", err)
	}
	return Ingest(doc, serviceID, opts...), nil
}

// FetchAndIngest fetches a document from rawURL and ingests it under a
// service id derived from the host. Non-2xx responses fail with a
// *FetchError.
func FetchAndIngest(ctx context.Context, rawURL string, client *http.Client, opts ...Option) (*catalog.Service, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse spec url: %w", err)
	}
	doc, err := NewURLLoader(rawURL, client).Load(ctx)
	if err != nil {
		return nil, err
	}
	return Ingest(doc, "openapi-url-"+slug(parsed.Hostname()), opts...), nil
}
