package config

import (
	"encoding/json"
	"testing"
)

func TestParseVersionedConfig_LegacyConfig(t *testing.T) {
	// Legacy config without version field
	legacyJSON := `{
		"project": "old-plan.json",
		"zoom": "day"
	}`

	cfg, err := ParseVersionedConfig([]byte(legacyJSON))
	if err != nil {
		t.Fatalf("Failed to parse legacy config: %v", err)
	}

	if cfg.ProjectFile != "old-plan.json" {
		t.Errorf("Expected ProjectFile 'old-plan.json', got '%s'", cfg.ProjectFile)
	}
	if cfg.Timeline.DefaultZoom != "day" {
		t.Errorf("Expected DefaultZoom 'day', got '%s'", cfg.Timeline.DefaultZoom)
	}
}

func TestParseVersionedConfig_Version1(t *testing.T) {
	v1JSON := `{
		"version": 1,
		"project": "v1.yaml",
		"zoom": "month",
		"timeline": {"labelWidth": 30}
	}`

	cfg, err := ParseVersionedConfig([]byte(v1JSON))
	if err != nil {
		t.Fatalf("Failed to parse v1 config: %v", err)
	}

	if cfg.ProjectFile != "v1.yaml" {
		t.Errorf("Expected ProjectFile 'v1.yaml', got '%s'", cfg.ProjectFile)
	}
	if cfg.Timeline.DefaultZoom != "month" {
		t.Errorf("Expected DefaultZoom 'month', got '%s'", cfg.Timeline.DefaultZoom)
	}
	if cfg.Timeline.LabelWidth != 30 {
		t.Errorf("Expected LabelWidth 30, got %d", cfg.Timeline.LabelWidth)
	}
}

func TestParseVersionedConfig_Nested(t *testing.T) {
	nestedJSON := `{
		"version": 2,
		"config": {"actor": "erin"}
	}`

	cfg, err := ParseVersionedConfig([]byte(nestedJSON))
	if err != nil {
		t.Fatalf("Failed to parse nested config: %v", err)
	}

	if cfg.Actor != "erin" {
		t.Errorf("Expected Actor 'erin', got '%s'", cfg.Actor)
	}
	if !cfg.Watch.Enabled {
		t.Error("Expected Watch.Enabled to keep its default")
	}
}

func TestParseVersionedConfig_FutureVersion(t *testing.T) {
	futureJSON := `{
		"version": 999,
		"projectFile": "future.json"
	}`

	_, err := ParseVersionedConfig([]byte(futureJSON))
	if err == nil {
		t.Error("Expected error for future version, got nil")
	}
}

func TestApplyMigrations_V0ToCurrent(t *testing.T) {
	data := map[string]interface{}{
		"project": "plan.json",
	}

	migrated, err := ApplyMigrations(data, 0)
	if err != nil {
		t.Fatalf("Migration failed: %v", err)
	}

	if v, ok := migrated["version"].(int); !ok || v != CurrentVersion {
		t.Errorf("Expected version %d, got %v", CurrentVersion, migrated["version"])
	}
	if migrated["projectFile"] != "plan.json" {
		t.Errorf("Expected projectFile to be migrated, got %v", migrated["projectFile"])
	}
	if _, ok := migrated["project"]; ok {
		t.Error("Expected legacy project key to be removed")
	}
}

func TestApplyMigrations_KeepsExplicitNewFields(t *testing.T) {
	data := map[string]interface{}{
		"version":     1,
		"project":     "old.json",
		"projectFile": "new.json",
		"zoom":        "day",
		"timeline":    map[string]interface{}{"defaultZoom": "week"},
	}

	migrated, err := ApplyMigrations(data, 1)
	if err != nil {
		t.Fatalf("Migration failed: %v", err)
	}

	if migrated["projectFile"] != "new.json" {
		t.Errorf("Expected projectFile 'new.json', got %v", migrated["projectFile"])
	}
	timeline := migrated["timeline"].(map[string]interface{})
	if timeline["defaultZoom"] != "week" {
		t.Errorf("Expected defaultZoom 'week', got %v", timeline["defaultZoom"])
	}
}

func TestApplyMigrations_NoPath(t *testing.T) {
	_, err := ApplyMigrations(map[string]interface{}{}, -1)
	if err == nil {
		t.Error("Expected error for missing migration path")
	}
}

func TestMarshalVersionedConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProjectFile = "board.json"

	data, err := MarshalVersionedConfig(cfg)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to parse marshalled config: %v", err)
	}

	if v, ok := raw["version"].(float64); !ok || int(v) != CurrentVersion {
		t.Errorf("Expected version %d, got %v", CurrentVersion, raw["version"])
	}
	if raw["projectFile"] != "board.json" {
		t.Errorf("Expected projectFile 'board.json', got %v", raw["projectFile"])
	}

	parsed, err := ParseVersionedConfig(data)
	if err != nil {
		t.Fatalf("Failed to re-parse config: %v", err)
	}
	if parsed.ProjectFile != "board.json" {
		t.Errorf("Round trip lost projectFile: %s", parsed.ProjectFile)
	}
}
