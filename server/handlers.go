//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"trpc.group/trpc-go/trpc-flowgen-go/catalog"
	"trpc.group/trpc-go/trpc-flowgen-go/catalog/openapi"
	"trpc.group/trpc-go/trpc-flowgen-go/discovery"
	"trpc.group/trpc-go/trpc-flowgen-go/log"
	"trpc.group/trpc-go/trpc-flowgen-go/model"
	"trpc.group/trpc-go/trpc-flowgen-go/requirement"
	"trpc.group/trpc-go/trpc-flowgen-go/workflow"
	"trpc.group/trpc-go/trpc-flowgen-go/workflow/nfexport"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type decomposeRequest struct {
	Messages []chatMessage `json:"messages"`
	Message  string        `json:"message"`
	Stream   bool          `json:"stream"`
}

type decomposeResponse struct {
	Steps          []requirement.Step          `json:"steps,omitempty"`
	Clarifications []requirement.Clarification `json:"clarifications,omitempty"`
	Message        string                      `json:"message"`
	Thinking       string                      `json:"thinking,omitempty"`
}

func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	var req decomposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	history := make([]model.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := model.Role(m.Role)
		if !role.IsValid() || role == model.RoleSystem {
			continue
		}
		history = append(history, model.Message{Role: role, Content: m.Content})
	}

	if req.Stream {
		s.decomposeSSE(w, r, history, req.Message)
		return
	}

	result, err := s.decomposer.Decompose(r.Context(), history, req.Message,
		s.promptContext(), requirement.Callbacks{})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, decomposeResponse{
		Steps:          result.Steps,
		Clarifications: result.Clarifications,
		Message:        result.Message,
		Thinking:       result.Thinking,
	})
}

type streamEvent struct {
	Type   string             `json:"type"`
	Delta  string             `json:"delta,omitempty"`
	Result *decomposeResponse `json:"result,omitempty"`
}

// decomposeSSE streams thinking/content deltas as server-sent events and
// finishes with a result event.
func (s *Server) decomposeSSE(w http.ResponseWriter, r *http.Request,
	history []model.Message, message string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emit := func(e streamEvent) {
		data, err := json.Marshal(e)
		if err != nil {
			log.Errorf("server: marshal SSE event: %v", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	result, err := s.decomposer.Decompose(r.Context(), history, message,
		s.promptContext(), requirement.Callbacks{
			OnThinking: func(delta string) { emit(streamEvent{Type: "thinking", Delta: delta}) },
			OnContent:  func(delta string) { emit(streamEvent{Type: "content", Delta: delta}) },
		})
	if err != nil {
		emit(streamEvent{Type: "error", Delta: err.Error()})
		return
	}
	emit(streamEvent{Type: "result", Result: &decomposeResponse{
		Steps:          result.Steps,
		Clarifications: result.Clarifications,
		Message:        result.Message,
		Thinking:       result.Thinking,
	}})
}

type ingestSpecRequest struct {
	JSON      string `json:"json"`
	URL       string `json:"url"`
	ServiceID string `json:"serviceId"`
}

type ingestSpecResponse struct {
	Service    catalog.Service `json:"service"`
	Operations int             `json:"operations"`
}

func (s *Server) handleIngestSpec(w http.ResponseWriter, r *http.Request) {
	var req ingestSpecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	var (
		svc *catalog.Service
		err error
	)
	switch {
	case req.URL != "":
		svc, err = openapi.FetchAndIngest(r.Context(), req.URL, s.httpClient)
	case req.JSON != "":
		svc, err = openapi.IngestReader(r.Context(), strings.NewReader(req.JSON), req.ServiceID)
	default:
		s.writeError(w, http.StatusBadRequest, "either json or url is required")
		return
	}
	if err != nil {
		if fetchErr, ok := err.(*openapi.FetchError); ok {
			s.writeError(w, http.StatusBadGateway, fetchErr.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.addIngested(*svc)
	s.writeJSON(w, ingestSpecResponse{Service: *svc, Operations: len(svc.Operations)})
}

type catalogResponse struct {
	Services []catalog.Service `json:"services"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ingested := append([]catalog.Service(nil), s.ingested...)
	s.mu.RUnlock()
	s.writeJSON(w, catalogResponse{Services: catalog.Merged(s.static, ingested)})
}

type generateRequest struct {
	Name                string                      `json:"name"`
	Steps               []requirement.Step          `json:"steps"`
	Clarifications      []requirement.Clarification `json:"clarifications"`
	ClarificationValues map[string]string           `json:"clarificationValues"`
}

type resolvedStep struct {
	StepID       string            `json:"stepId"`
	Description  string            `json:"description"`
	OperationID  string            `json:"operationId,omitempty"`
	ServiceID    string            `json:"serviceId"`
	ParamMapping map[string]string `json:"paramMapping,omitempty"`
}

type generateResponse struct {
	Steps []resolvedStep  `json:"steps"`
	Graph *workflow.Graph `json:"graph"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()
	if len(req.Steps) == 0 {
		s.writeError(w, http.StatusBadRequest, "steps are required")
		return
	}
	if req.Name == "" {
		req.Name = "Generated workflow"
	}

	resolved := s.resolver().Resolve(r.Context(), req.Steps, discovery.Options{
		Clarifications:      req.Clarifications,
		ClarificationValues: req.ClarificationValues,
	})
	graph, err := workflow.Synthesize(resolved, req.Name, workflow.Options{
		Clarifications:      req.Clarifications,
		ClarificationValues: req.ClarificationValues,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "n8n" {
		data, err := nfexport.ExportN8N(graph, req.Name)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	out := generateResponse{Graph: graph}
	for _, step := range resolved {
		rs := resolvedStep{
			StepID:       step.StepID,
			Description:  step.Description,
			ServiceID:    step.ServiceID,
			ParamMapping: step.ParamMapping,
		}
		if step.Operation != nil {
			rs.OperationID = step.Operation.ID
		}
		out.Steps = append(out.Steps, rs)
	}
	s.writeJSON(w, out)
}

func (s *Server) handleSaveExample(w http.ResponseWriter, r *http.Request) {
	var example requirement.SavedExample
	if err := json.NewDecoder(r.Body).Decode(&example); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()
	if example.Requirement == "" || len(example.Steps) == 0 {
		s.writeError(w, http.StatusBadRequest, "requirement and steps are required")
		return
	}
	s.addExample(example)
	s.writeJSON(w, map[string]string{"status": "saved"})
}

func (s *Server) handleListExamples(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	examples := append([]requirement.SavedExample(nil), s.examples...)
	s.mu.RUnlock()
	s.writeJSON(w, map[string]any{"examples": examples})
}

func (s *Server) handleSaveDataset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.addDataset(req.Name)
	s.writeJSON(w, map[string]string{"status": "saved"})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	datasets := append([]string(nil), s.datasets...)
	s.mu.RUnlock()
	s.writeJSON(w, map[string]any{"datasets": datasets})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("server: encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		log.Errorf("server: encode error response: %v", err)
	}
}
