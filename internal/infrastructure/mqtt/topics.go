package mqtt

import "fmt"

// Topic prefixes for the Chroma MQTT scheme.
//
// All topics use the flat scheme: chroma/{category}/{kind}/{id}
const (
	// TopicPrefix is the base for all Chroma topics.
	TopicPrefix = "chroma"

	// TopicPrefixStatus is the base for process status topics.
	TopicPrefixStatus = "chroma/status"
)

// Topics provides builders for Chroma MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.LightCommand("light-living-main")
//	// Returns: "chroma/command/light/light-living-main"
type Topics struct{}

// LightCommand returns the topic colour commands for a light are published on.
//
// Example: chroma/command/light/light-living-main
func (Topics) LightCommand(lightID string) string {
	return fmt.Sprintf("%s/command/light/%s", TopicPrefix, lightID)
}

// LightState returns the topic a light publishes its state on.
//
// Example: chroma/state/light/light-living-main
func (Topics) LightState(lightID string) string {
	return fmt.Sprintf("%s/state/light/%s", TopicPrefix, lightID)
}

// LightIDFromStateTopic extracts the light ID from a state topic.
// Returns "" when the topic does not match the state scheme.
func (Topics) LightIDFromStateTopic(topic string) string {
	prefix := TopicPrefix + "/state/light/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return ""
	}
	return topic[len(prefix):]
}

// SystemStatus returns the process status topic, also used as the LWT topic.
//
// Example: chroma/status/core
func (Topics) SystemStatus() string {
	return TopicPrefixStatus + "/core"
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllLightStates returns a pattern matching every light's state topic.
//
// Pattern: chroma/state/light/+
func (Topics) AllLightStates() string {
	return fmt.Sprintf("%s/state/light/+", TopicPrefix)
}

// AllLightCommands returns a pattern matching every light's command topic.
//
// Pattern: chroma/command/light/+
func (Topics) AllLightCommands() string {
	return fmt.Sprintf("%s/command/light/+", TopicPrefix)
}

// AllTopics returns a pattern matching all Chroma topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: chroma/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
