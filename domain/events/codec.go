package events

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes an event as its JSON wire form.
func Marshal(event DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.GetEventType(), err)
	}
	return data, nil
}

// Decode rebuilds a typed event from its type name and JSON payload.
func Decode(eventType string, data []byte) (DomainEvent, error) {
	var (
		event DomainEvent
		err   error
	)

	switch eventType {
	case TypeShopCreated:
		event, err = decodeInto[ShopCreated](data)
	case TypeShopDeleted:
		event, err = decodeInto[ShopDeleted](data)
	case TypeReviewCreated:
		event, err = decodeInto[ReviewCreated](data)
	case TypeReviewDeleted:
		event, err = decodeInto[ReviewDeleted](data)
	case TypeReplyCreated:
		event, err = decodeInto[ReplyCreated](data)
	case TypeReplyDeleted:
		event, err = decodeInto[ReplyDeleted](data)
	case TypeCacheCountReported:
		event, err = decodeInto[CacheCountReported](data)
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
	}
	return event, nil
}

// Unmarshal decodes a payload whose event_type field names its type.
func Unmarshal(data []byte) (DomainEvent, error) {
	var header struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to read event header: %w", err)
	}
	return Decode(header.EventType, data)
}

func decodeInto[E DomainEvent](data []byte) (DomainEvent, error) {
	var e E
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return e, nil
}
