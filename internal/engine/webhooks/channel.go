package webhooks

import (
	"fmt"
	"strings"
)

// Channel is a named notification destination.
type Channel string

const (
	ChannelContact     Channel = "contact"
	ChannelProcedure   Channel = "demarches"
	ChannelRecruitment Channel = "recrutement"
)

const settingKeyPrefix = "discord_webhook_"

// Channels lists every channel in display order.
func Channels() []Channel {
	return []Channel{ChannelContact, ChannelProcedure, ChannelRecruitment}
}

func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelContact, ChannelProcedure, ChannelRecruitment:
		return Channel(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
}

// SettingKey is the settings row holding the channel's destination URL.
func (c Channel) SettingKey() string {
	return settingKeyPrefix + string(c)
}

// IsChannelSettingKey reports whether key belongs to the webhook registry.
func IsChannelSettingKey(key string) bool {
	return strings.HasPrefix(key, settingKeyPrefix)
}
