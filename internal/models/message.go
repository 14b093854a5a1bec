package models

const (
	MsgFullSync     = "full_sync"
	MsgUpdateSingle = "update_single"
	MsgHealthCheck  = "health_check"
)

// Message is the envelope pushed to viewers and returned by a few JSON endpoints.
type Message struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Data any    `json:"data,omitempty"`
}

func FullSync(snapshots map[string]*LiveSnapshot) Message {
	return Message{Type: MsgFullSync, Data: snapshots}
}

func UpdateSingle(id string, snapshot *LiveSnapshot) Message {
	return Message{Type: MsgUpdateSingle, ID: id, Data: snapshot}
}

type HealthCheck struct {
	Status string `json:"sys_status"`
	Uptime int64  `json:"uptime"`
	Store  string `json:"store"`
}
