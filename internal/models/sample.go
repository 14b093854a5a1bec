package models

// MetricSample is one appended telemetry row for a node.
type MetricSample struct {
	NodeID      string  `json:"-"`
	CreatedAt   int64   `json:"created_at"`
	CPU         float64 `json:"cpu"`
	RAM         float64 `json:"ram"`
	Disk        float64 `json:"disk"`
	NetIn       float64 `json:"net_in"`
	NetOut      float64 `json:"net_out"`
	TrafficUsed float64 `json:"traffic_used"`
}

// ProbeSample is one appended latency row. All probes of one report share CreatedAt.
type ProbeSample struct {
	NodeID    string
	Target    string
	LatencyMS int64
	CreatedAt int64
}

// HistoryPoint is the charting projection of a MetricSample.
type HistoryPoint struct {
	CreatedAt int64   `json:"created_at"`
	CPU       float64 `json:"cpu"`
	RAM       float64 `json:"ram"`
	NetIn     float64 `json:"net_in"`
	NetOut    float64 `json:"net_out"`
}

func (m *MetricSample) HistoryPoint() HistoryPoint {
	return HistoryPoint{
		CreatedAt: m.CreatedAt,
		CPU:       m.CPU,
		RAM:       m.RAM,
		NetIn:     m.NetIn,
		NetOut:    m.NetOut,
	}
}
