package config

import (
	"os"
	"strings"
	"time"
)

// Agent holds reporter configuration. Fields are unexported to prevent modification.
type Agent struct {
	nodeID             string
	serverURL          string
	profilePath        string
	reportInterval     time.Duration
	probeTimeout       time.Duration
	targetRefresh      time.Duration
	serviceName        string
	serviceDisplayName string
	serviceDescription string
	logFile            string
}

func NewAgent() *Agent {
	v := newEnv(map[string]any{
		"server_url":           "http://localhost:3000",
		"profile_path":         "node.yaml",
		"report_interval":      "3s",
		"probe_timeout":        "2s",
		"target_refresh":       "5m",
		"service_name":         "EstatusAgent",
		"service_display_name": "Estatus Agent",
		"service_description":  "Reports host telemetry and latency probes to the estatus server",
		"log_file":             "agent.log",
	})
	nodeID := v.GetString("node_id")
	if nodeID == "" {
		if host, err := os.Hostname(); err == nil {
			nodeID = strings.ToLower(host)
		}
	}
	return &Agent{
		nodeID:             nodeID,
		serverURL:          strings.TrimRight(v.GetString("server_url"), "/"),
		profilePath:        v.GetString("profile_path"),
		reportInterval:     positiveDuration(v, "report_interval", 3*time.Second),
		probeTimeout:       positiveDuration(v, "probe_timeout", 2*time.Second),
		targetRefresh:      positiveDuration(v, "target_refresh", 5*time.Minute),
		serviceName:        v.GetString("service_name"),
		serviceDisplayName: v.GetString("service_display_name"),
		serviceDescription: v.GetString("service_description"),
		logFile:            v.GetString("log_file"),
	}
}

// Getter methods (immutable from outside)

func (c *Agent) NodeID() string {
	return c.nodeID
}

func (c *Agent) ServerURL() string {
	return c.serverURL
}

func (c *Agent) ProfilePath() string {
	return c.profilePath
}

func (c *Agent) ReportInterval() time.Duration {
	return c.reportInterval
}

func (c *Agent) ProbeTimeout() time.Duration {
	return c.probeTimeout
}

func (c *Agent) TargetRefresh() time.Duration {
	return c.targetRefresh
}

func (c *Agent) ServiceName() string {
	return c.serviceName
}

func (c *Agent) ServiceDisplayName() string {
	return c.serviceDisplayName
}

func (c *Agent) ServiceDescription() string {
	return c.serviceDescription
}

func (c *Agent) LogFile() string {
	return c.logFile
}
