package mqtt

import "strings"

// TopicSeparator separates the levels of an MQTT topic.
const TopicSeparator = "/"

// TrimTopic trims TopicSeparator from the start and end of the specified topic.
func TrimTopic(topic string) string {
	return strings.Trim(topic, TopicSeparator)
}

// JoinTopic trims each part and joins the non-empty ones with TopicSeparator. Empty parts are dropped wherever they
// appear, so an empty prefix or suffix never leaves a stray separator.
func JoinTopic(parts ...string) string {
	levels := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = TrimTopic(part); part != "" {
			levels = append(levels, part)
		}
	}

	return strings.Join(levels, TopicSeparator)
}
