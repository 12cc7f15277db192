package enums

import "fmt"

// CampaignChannel selects which providers a marketing campaign goes out on.
type CampaignChannel string

const (
	CampaignChannelEmail CampaignChannel = "email"
	CampaignChannelSMS   CampaignChannel = "sms"
	CampaignChannelBoth  CampaignChannel = "both"
)

var validCampaignChannels = []CampaignChannel{
	CampaignChannelEmail,
	CampaignChannelSMS,
	CampaignChannelBoth,
}

// String implements fmt.Stringer.
func (c CampaignChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CampaignChannel.
func (c CampaignChannel) IsValid() bool {
	for _, candidate := range validCampaignChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCampaignChannel converts raw input into a CampaignChannel.
func ParseCampaignChannel(value string) (CampaignChannel, error) {
	for _, candidate := range validCampaignChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign channel %q", value)
}
