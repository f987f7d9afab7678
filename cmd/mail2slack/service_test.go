package main

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kardianos/service"

	"mail2slack/pkg/config"
)

func TestServiceConfig_DefaultArguments(t *testing.T) {
	originalConfigPath := configPath
	t.Cleanup(func() {
		configPath = originalConfigPath
	})

	configPath = ""
	t.Setenv(config.ConfigPathEnv, "")

	got := ServiceConfig().Arguments
	want := []string{"service", "run"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected arguments %v, got %v", want, got)
	}
}

func TestServiceConfig_IncludesConfigFlag(t *testing.T) {
	originalConfigPath := configPath
	t.Cleanup(func() {
		configPath = originalConfigPath
	})

	configFile := filepath.Join(t.TempDir(), "service-config.json")
	configPath = configFile
	t.Setenv(config.ConfigPathEnv, "")

	got := ServiceConfig().Arguments
	want := []string{"-c", configFile, "service", "run"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected arguments %v, got %v", want, got)
	}
}

func TestServiceConfig_UsesConfigPathEnvWhenFlagNotProvided(t *testing.T) {
	originalConfigPath := configPath
	t.Cleanup(func() {
		configPath = originalConfigPath
	})

	configPath = ""
	configFile := filepath.Join(t.TempDir(), "env-config.json")
	t.Setenv(config.ConfigPathEnv, configFile)

	got := ServiceConfig().Arguments
	want := []string{"-c", configFile, "service", "run"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected arguments %v, got %v", want, got)
	}
}

func TestServiceSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range serviceCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, action := range service.ControlAction {
		if !names[action] {
			t.Fatalf("missing service subcommand %q", action)
		}
	}
	for _, name := range []string{"status", "run"} {
		if !names[name] {
			t.Fatalf("missing service subcommand %q", name)
		}
	}
}

func TestStatusText(t *testing.T) {
	if got := statusText(service.StatusRunning); got != "Running" {
		t.Fatalf("expected Running, got %q", got)
	}
	if got := statusText(service.StatusStopped); got != "Stopped" {
		t.Fatalf("expected Stopped, got %q", got)
	}
	if got := statusText(service.StatusUnknown); got != "Unknown" {
		t.Fatalf("expected Unknown, got %q", got)
	}
}
