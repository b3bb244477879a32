package mq

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// matchTopic reports whether topic matches filter, honoring the MQTT
// wildcards '+' (one level) and '#' (that level and everything below it,
// only legal as the final level).
func matchTopic(filter, topic string) bool {
	// Per MQTT-4.7.2-1: a filter starting with a wildcard never matches a
	// topic starting with '$', regardless of what the rest of the filter
	// says.
	if strings.HasPrefix(topic, "$") && (strings.HasPrefix(filter, "+") || strings.HasPrefix(filter, "#")) {
		return false
	}

	filterLevels := strings.Split(filter, "/")
	topicLevels := strings.Split(topic, "/")

	for i, level := range filterLevels {
		if level == "#" {
			return true
		}
		if i >= len(topicLevels) {
			return false
		}
		if level != "+" && level != topicLevels[i] {
			return false
		}
	}
	return len(filterLevels) == len(topicLevels)
}

// Protocol limits applied when none are configured on ConnectionSettings.
const (
	// DefaultMaxTopicLength is the widest topic name or filter a 2-byte
	// length prefix can carry.
	DefaultMaxTopicLength = 65535

	// DefaultMaxPayloadSize is the largest PUBLISH payload the 4-byte
	// Remaining Length field can address.
	DefaultMaxPayloadSize = 268435455

	// DefaultMaxIncomingPacket mirrors DefaultMaxPayloadSize for whole
	// inbound packets rather than just their payload.
	DefaultMaxIncomingPacket = 268435455

	// MaxClientIDLength is the client identifier length every broker is
	// required to accept; longer ones are accepted on a best-effort basis.
	MaxClientIDLength = 23
)

// getLimit returns configured if it was set, otherwise fallback.
func getLimit(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}

// validatePublishTopic checks topic against PUBLISH's rules: no wildcards,
// no embedded nulls, valid UTF-8, within the configured length limit.
func validatePublishTopic(topic string, settings *ConnectionSettings) error {
	if topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if max := getLimit(settings.MaxTopicLength, DefaultMaxTopicLength); len(topic) > max {
		return fmt.Errorf("topic length %d exceeds maximum %d", len(topic), max)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("topic must not contain wildcard characters")
	}
	if strings.Contains(topic, "\x00") {
		return fmt.Errorf("topic contains null byte which is not allowed")
	}
	if !utf8.ValidString(topic) {
		return fmt.Errorf("topic is not valid UTF-8")
	}
	return nil
}

// validateSubscribeTopic checks filter against SUBSCRIBE's rules: '+' and
// '#' are each only legal filling an entire level, and '#' is only legal as
// the last level.
func validateSubscribeTopic(filter string, settings *ConnectionSettings) error {
	if filter == "" {
		return fmt.Errorf("topic filter cannot be empty")
	}
	if max := getLimit(settings.MaxTopicLength, DefaultMaxTopicLength); len(filter) > max {
		return fmt.Errorf("topic filter length %d exceeds maximum %d", len(filter), max)
	}
	if strings.Contains(filter, "\x00") {
		return fmt.Errorf("topic filter contains null byte which is not allowed")
	}
	if !utf8.ValidString(filter) {
		return fmt.Errorf("topic filter is not valid UTF-8")
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		switch {
		case strings.Contains(level, "+") && level != "+":
			return fmt.Errorf("single-level wildcard '+' must occupy an entire topic level")
		case strings.Contains(level, "#") && level != "#":
			return fmt.Errorf("multi-level wildcard '#' must occupy an entire topic level")
		case level == "#" && i != len(levels)-1:
			return fmt.Errorf("multi-level wildcard '#' is only allowed in the last topic level")
		}
	}
	return nil
}

// validatePayload rejects a PUBLISH payload larger than the configured or
// default limit.
func validatePayload(payload []byte, settings *ConnectionSettings) error {
	if max := getLimit(settings.MaxPayloadSize, DefaultMaxPayloadSize); len(payload) > max {
		return fmt.Errorf("payload size %d exceeds maximum %d", len(payload), max)
	}
	return nil
}
