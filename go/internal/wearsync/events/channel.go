package events

import (
	"fmt"
	"strings"
)

// Channel is one of the logical topics records are published under
type Channel string

const (
	ChannelGame    Channel = "game"
	ChannelTheme   Channel = "theme"
	ChannelHaptic  Channel = "haptic"
	ChannelUnknown Channel = ""
)

// Channels lists every channel in dispatch order.
func Channels() []Channel {
	return []Channel{ChannelGame, ChannelTheme, ChannelHaptic}
}

// PathPrefix returns the record path prefix for the channel, e.g. "/game".
func (c Channel) PathPrefix() string {
	return "/" + string(c)
}

func (c Channel) String() string { return string(c) }

// Path builds the unique record path for a publish, e.g. "/game/1718000000000".
func Path(c Channel, seq int64) string {
	return fmt.Sprintf("%s/%d", c.PathPrefix(), seq)
}

// ChannelFromPath dispatches a record path by prefix. Unknown paths map to ChannelUnknown.
func ChannelFromPath(path string) Channel {
	for _, c := range Channels() {
		prefix := c.PathPrefix()
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return c
		}
	}
	return ChannelUnknown
}
