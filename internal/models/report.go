package models

// Report is one self-report posted by a node. Only ID is required.
//
// Three traffic fields are accepted under two names each; the snake_case name
// wins when both are present.
type Report struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Loc            string         `json:"loc"`
	Code           string         `json:"code"`
	OS             string         `json:"os"`
	Price          string         `json:"price"`
	ExpireDate     string         `json:"expire_date"`
	BandwidthLimit BandwidthLimit `json:"bandwidth_limit"`
	Tags           []Tag          `json:"tags"`

	CPU  float64 `json:"cpu"`
	RAM  float64 `json:"ram"`
	Disk float64 `json:"disk"`

	NetIn             *float64 `json:"net_in,omitempty"`
	NetInLegacy       *float64 `json:"netIn,omitempty"`
	NetOut            *float64 `json:"net_out,omitempty"`
	NetOutLegacy      *float64 `json:"netOut,omitempty"`
	TrafficUsed       *float64 `json:"traffic_used,omitempty"`
	TrafficUsedLegacy *float64 `json:"trafficUsed,omitempty"`

	PingData []PingResult `json:"pingData,omitempty"`
}

// PingResult is one latency measurement to a named target.
type PingResult struct {
	Target string  `json:"target"`
	MS     float64 `json:"ms"`
}

func (r *Report) InboundRate() float64 {
	return pick(r.NetIn, r.NetInLegacy)
}

func (r *Report) OutboundRate() float64 {
	return pick(r.NetOut, r.NetOutLegacy)
}

func (r *Report) TrafficUsedTotal() float64 {
	return pick(r.TrafficUsed, r.TrafficUsedLegacy)
}

func pick(canonical, legacy *float64) float64 {
	if canonical != nil {
		return *canonical
	}
	if legacy != nil {
		return *legacy
	}
	return 0
}
