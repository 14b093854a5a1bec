package models

// LiveSnapshot is the broadcast view of one node: registry fields, the latest
// metric sample (omitted entirely when the node never reported telemetry) and
// the latest probe group.
type LiveSnapshot struct {
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
	BuyLink        string         `json:"buy_link"`
	DisplayOrder   int            `json:"display_order"`
	UpdatedAt      int64          `json:"updated_at"`

	*MetricSample

	PingData []PingResult `json:"pingData"`
}
