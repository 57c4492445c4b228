// Package ens decodes Kount Event Notification System batches.
package ens

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/smallbiznis/fraudreview/internal/fraudreview/domain"
)

// Batch is one ENS delivery. Merchant is kept raw; callers decide how to read it.
type Batch struct {
	Merchant string
	Total    string
	Events   []Event
}

// Event pairs the decoded review event with the fields as received.
type Event struct {
	Review domain.ReviewEvent
	Raw    RawEvent
}

// RawEvent is the untrimmed event body, stored alongside the idempotency record.
type RawEvent struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	OrderNumber string `json:"order_number,omitempty"`
	HasOrder    bool   `json:"-"`
	OldValue    string `json:"old_value"`
	NewValue    string `json:"new_value"`
	Agent       string `json:"agent,omitempty"`
	Occurred    string `json:"occurred,omitempty"`
}

type xmlEvents struct {
	XMLName  xml.Name   `xml:"events"`
	Merchant string     `xml:"merchant,attr"`
	Total    string     `xml:"total,attr"`
	Events   []xmlEvent `xml:"event"`
}

type xmlEvent struct {
	Name     string  `xml:"name"`
	Key      *xmlKey `xml:"key"`
	OldValue string  `xml:"old_value"`
	NewValue string  `xml:"new_value"`
	Agent    string  `xml:"agent"`
	Occurred string  `xml:"occurred"`
}

type xmlKey struct {
	OrderNumber *string `xml:"order_number,attr"`
	Value       string  `xml:",chardata"`
}

// Parse decodes an ENS batch. Empty or malformed bodies yield domain.ErrInvalidPayload.
func Parse(payload []byte) (*Batch, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrInvalidPayload)
	}

	var doc xmlEvents
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	decoder.Strict = true
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	batch := &Batch{
		Merchant: strings.TrimSpace(doc.Merchant),
		Total:    strings.TrimSpace(doc.Total),
		Events:   make([]Event, 0, len(doc.Events)),
	}
	for _, item := range doc.Events {
		raw := RawEvent{
			Name:     item.Name,
			OldValue: item.OldValue,
			NewValue: item.NewValue,
			Agent:    item.Agent,
			Occurred: item.Occurred,
		}
		if item.Key != nil {
			raw.Key = item.Key.Value
			if item.Key.OrderNumber != nil {
				raw.OrderNumber = *item.Key.OrderNumber
				raw.HasOrder = true
			}
		}

		review := domain.NewReviewEvent(raw.Name, raw.OrderNumber, raw.Key, raw.OldValue, raw.NewValue)
		review.Agent = strings.TrimSpace(raw.Agent)
		review.OccurredAt = strings.TrimSpace(raw.Occurred)
		batch.Events = append(batch.Events, Event{Review: review, Raw: raw})
	}
	return batch, nil
}
