package kafka

// Topic definitions for Kafka event streaming
const (
	// Upstream articles waiting to be scored
	TopicNewsRaw = "news.raw"

	// Articles with their sentiment verdict
	TopicNewsScored = "news.scored"
)
