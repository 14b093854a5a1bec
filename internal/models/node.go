package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// UnlimitedBandwidth is the sentinel accepted in place of a numeric bandwidth limit.
const UnlimitedBandwidth = "unlimited"

// PlaceholderUnset fills price and expiry when a new node does not send them.
const PlaceholderUnset = "待配置"

// Node is one row of the node registry. TagsJSON holds the stored tag encoding;
// use DecodeTags to read it.
type Node struct {
	ID             string
	Name           string
	Type           string
	Loc            string
	Code           string
	OS             string
	Price          string
	ExpireDate     string
	BandwidthLimit BandwidthLimit
	TagsJSON       string
	BuyLink        string
	DisplayOrder   int
	UpdatedAt      int64
}

// Tag is a display label with a colour category.
type Tag struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// EncodeTags returns the storage form of a tag list. A nil list encodes as "[]".
func EncodeTags(tags []Tag) string {
	if tags == nil {
		tags = []Tag{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// DecodeTags never fails: empty or corrupt input yields an empty list.
func DecodeTags(raw string) []Tag {
	tags := []Tag{}
	if strings.TrimSpace(raw) == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []Tag{}
	}
	return tags
}

// BandwidthLimit is either a number (as text) or "unlimited". It is empty when
// the reporter did not send one.
type BandwidthLimit string

func (b *BandwidthLimit) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = BandwidthLimit(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*b = BandwidthLimit(n.String())
	return nil
}

func (b BandwidthLimit) MarshalJSON() ([]byte, error) {
	if b == "" {
		return []byte("null"), nil
	}
	if isNumber(string(b)) {
		return []byte(b), nil
	}
	return json.Marshal(string(b))
}

func isNumber(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	return json.Valid([]byte(s))
}

func (b BandwidthLimit) Unlimited() bool {
	return strings.EqualFold(string(b), UnlimitedBandwidth)
}
