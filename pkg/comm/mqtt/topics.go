package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	topicRoot   = "bitlog"
	topicPacket = "pkt"
	topicMeta   = "meta"
)

// PacketTopic returns the packet topic of a source.
func PacketTopic(sourceID uint16) string {
	return fmt.Sprintf("%s/%04x/%s", topicRoot, sourceID, topicPacket)
}

// MetaTopic returns the meta topic of a source.
func MetaTopic(sourceID uint16) string {
	return fmt.Sprintf("%s/%04x/%s", topicRoot, sourceID, topicMeta)
}

// ParseTopic extracts the source ID and kind from a topic without prefix.
func ParseTopic(topic string) (sourceID uint16, kind string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[0] != topicRoot {
		return 0, "", false
	}
	id, err := strconv.ParseUint(items[1], 16, 16)
	if err != nil {
		return 0, "", false
	}
	return uint16(id), items[2], true
}

// Meta describes a logging source.
type Meta struct {
	SourceID    uint16 `json:"source_id"`
	Capacity    int    `json:"capacity"`
	PacketSize  int    `json:"packet_size"`
	Description string `json:"description,omitempty"`
}

// String renders the meta for display.
func (m Meta) String() string {
	s := fmt.Sprintf("source %04x capacity %d packet %d", m.SourceID, m.Capacity, m.PacketSize)
	if m.Description != "" {
		s += ": " + m.Description
	}
	return s
}
