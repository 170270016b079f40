//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the synthesis pipeline over HTTP: requirement
// decomposition, spec ingestion, catalog queries and graph generation.
package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-flowgen-go/catalog"
	"trpc.group/trpc-go/trpc-flowgen-go/discovery"
	"trpc.group/trpc-go/trpc-flowgen-go/model"
	"trpc.group/trpc-go/trpc-flowgen-go/requirement"
)

// maxSavedExamples caps the few-shot example store.
const maxSavedExamples = 5

// Server carries the pipeline plus the in-memory stores behind the API.
// The pipeline packages themselves stay store-free; everything stateful
// lives here.
type Server struct {
	router     *mux.Router
	decomposer *requirement.Decomposer
	model      model.Model
	static     []catalog.Service
	httpClient *http.Client

	mu        sync.RWMutex
	ingested  []catalog.Service
	examples  []requirement.SavedExample
	datasets  []string
	connected []string
	channels  []string
}

// Option configures the Server instance.
type Option func(*Server)

// WithModel sets the language model used for decomposition and
// operation selection. Without one, decomposition returns setup
// guidance and selection falls back to keyword matching.
func WithModel(m model.Model) Option {
	return func(s *Server) { s.model = m }
}

// WithStaticCatalog overrides the builtin static catalog.
func WithStaticCatalog(services []catalog.Service) Option {
	return func(s *Server) { s.static = services }
}

// WithConnectedServices marks integration tags as connected.
func WithConnectedServices(tags ...string) Option {
	return func(s *Server) { s.connected = tags }
}

// WithDatasets seeds the dataset name store.
func WithDatasets(names ...string) Option {
	return func(s *Server) { s.datasets = names }
}

// WithChatChannels seeds the chat channel listing offered to the
// decomposer when the slack integration is connected.
func WithChatChannels(channels ...string) Option {
	return func(s *Server) { s.channels = channels }
}

// WithHTTPClient sets the client used to fetch OpenAPI specs by URL.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.httpClient = c }
}

// New creates the API server.
func New(opts ...Option) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		static:     catalog.Builtin(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.decomposer = requirement.New(s.model)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/api/decompose", s.handleDecompose).Methods(http.MethodPost)
	s.router.HandleFunc("/api/specs", s.handleIngestSpec).Methods(http.MethodPost)
	s.router.HandleFunc("/api/catalog", s.handleCatalog).Methods(http.MethodGet)
	s.router.HandleFunc("/api/generate", s.handleGenerate).Methods(http.MethodPost)
	s.router.HandleFunc("/api/examples", s.handleSaveExample).Methods(http.MethodPost)
	s.router.HandleFunc("/api/examples", s.handleListExamples).Methods(http.MethodGet)
	s.router.HandleFunc("/api/datasets", s.handleSaveDataset).Methods(http.MethodPost)
	s.router.HandleFunc("/api/datasets", s.handleListDatasets).Methods(http.MethodGet)
}

// promptContext snapshots the stores into the decomposer's immutable
// context.
func (s *Server) promptContext() requirement.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pctx := requirement.Context{
		ConnectedServices: append([]string(nil), s.connected...),
		Datasets:          append([]string(nil), s.datasets...),
		IngestedServices:  append([]catalog.Service(nil), s.ingested...),
		ChatChannels:      append([]string(nil), s.channels...),
	}
	if len(s.examples) > 0 {
		example := s.examples[len(s.examples)-1]
		pctx.Example = &example
	}
	return pctx
}

// resolver builds a Resolver over the current catalog snapshot.
func (s *Server) resolver() *discovery.Resolver {
	s.mu.RLock()
	ingested := append([]catalog.Service(nil), s.ingested...)
	s.mu.RUnlock()
	return discovery.NewResolver(s.static, ingested,
		discovery.WithSelector(discovery.NewSelector(s.model)))
}

func (s *Server) addIngested(svc catalog.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ingested {
		if s.ingested[i].ID == svc.ID {
			s.ingested[i] = svc
			return
		}
	}
	s.ingested = append(s.ingested, svc)
}

func (s *Server) addExample(example requirement.SavedExample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.examples = append(s.examples, example)
	if len(s.examples) > maxSavedExamples {
		s.examples = s.examples[len(s.examples)-maxSavedExamples:]
	}
}

func (s *Server) addDataset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.datasets {
		if d == name {
			return
		}
	}
	s.datasets = append(s.datasets, name)
}
