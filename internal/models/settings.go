package models

import (
	"encoding/json"
	"strings"
)

const (
	SettingAdminPassword   = "admin_password"
	SettingBackgroundImage = "background_image"
	SettingPingTargets     = "ping_targets"
)

// PingTarget is a named probe destination configured on the server.
type PingTarget struct {
	Name string `json:"name"`
	Host string `json:"host"`
}

// PublicConfig is the unauthenticated projection of the settings table.
type PublicConfig struct {
	BackgroundImage string       `json:"background_image"`
	PingTargets     []PingTarget `json:"ping_targets"`
}

func DefaultPingTargets() []PingTarget {
	return []PingTarget{
		{Name: "Google", Host: "google.com"},
		{Name: "Cloudflare", Host: "1.1.1.1"},
		{Name: "China Telecom", Host: "chinatelecom.com.cn"},
	}
}

// DefaultSettings are seeded on first boot when the key is absent.
func DefaultSettings() map[string]string {
	targets, _ := json.Marshal(DefaultPingTargets())
	return map[string]string{
		SettingAdminPassword:   "admin",
		SettingBackgroundImage: "https://images.unsplash.com/photo-1451187580459-43490279c0fa?q=80&w=2072&auto=format&fit=crop",
		SettingPingTargets:     string(targets),
	}
}

// KnownSetting reports whether key belongs to the fixed settings key space.
func KnownSetting(key string) bool {
	_, ok := DefaultSettings()[key]
	return ok
}

// DecodePingTargets degrades to an empty list on malformed input.
func DecodePingTargets(raw string) []PingTarget {
	targets := []PingTarget{}
	if strings.TrimSpace(raw) == "" {
		return targets
	}
	if err := json.Unmarshal([]byte(raw), &targets); err != nil || targets == nil {
		return []PingTarget{}
	}
	return targets
}
