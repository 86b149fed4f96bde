package controller

import (
	"testing"

	"tutordesk/config"
)

func setTestWorkflowConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{
		WorkflowID:   "wf-content",
		AdWorkflowID: "wf-ads",
	}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestResolveWorkflowInputContent(t *testing.T) {
	setTestWorkflowConfig(t)

	workflowID, payload, historyInput, err := resolveWorkflowInput(RunWorkflowRequest{Content: "write a tagline"})
	if err != nil {
		t.Fatalf("resolveWorkflowInput: %v", err)
	}
	if workflowID != "wf-content" {
		t.Errorf("workflowID = %q, want wf-content", workflowID)
	}
	body, ok := payload.(map[string]string)
	if !ok || body["content"] != "write a tagline" {
		t.Errorf("payload = %#v, want content map", payload)
	}
	if historyInput != "write a tagline" {
		t.Errorf("historyInput = %q, want the raw content", historyInput)
	}
}

func TestResolveWorkflowInputAdVariant(t *testing.T) {
	setTestWorkflowConfig(t)

	workflowID, payload, historyInput, err := resolveWorkflowInput(RunWorkflowRequest{
		Website: "https://example.com",
		Company: "Example Inc",
	})
	if err != nil {
		t.Fatalf("resolveWorkflowInput: %v", err)
	}
	if workflowID != "wf-ads" {
		t.Errorf("workflowID = %q, want wf-ads", workflowID)
	}
	input, ok := payload.(adWorkflowInput)
	if !ok || input.Website != "https://example.com" || input.Company != "Example Inc" {
		t.Errorf("payload = %#v", payload)
	}
	if historyInput != `{"website":"https://example.com","company":"Example Inc"}` {
		t.Errorf("historyInput = %q", historyInput)
	}
}

func TestResolveWorkflowInputValidation(t *testing.T) {
	setTestWorkflowConfig(t)

	if _, _, _, err := resolveWorkflowInput(RunWorkflowRequest{}); err == nil {
		t.Error("expected an error when no input is provided")
	}
	if _, _, _, err := resolveWorkflowInput(RunWorkflowRequest{Website: "https://example.com"}); err == nil {
		t.Error("expected an error when company is missing")
	}
	if _, _, _, err := resolveWorkflowInput(RunWorkflowRequest{Company: "Example Inc"}); err == nil {
		t.Error("expected an error when website is missing")
	}
}
