package models

// ActivityKind mirrors the platform activity categories the bot can display.
type ActivityKind string

const (
	ActivityPlaying   ActivityKind = "playing"
	ActivityStreaming ActivityKind = "streaming"
	ActivityListening ActivityKind = "listening"
	ActivityWatching  ActivityKind = "watching"
	ActivityCompeting ActivityKind = "competing"
)

// Activity is one presence descriptor: the text shown next to the bot name
// and its category. URL is only meaningful for streaming activities.
type Activity struct {
	Name string
	Kind ActivityKind
	URL  string
}
