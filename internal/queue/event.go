// Package queue defines the integrity events exchanged over the message
// broker and the background consumer that replays interrupted cascades.
package queue

import "time"

// IntegrityQueueName is the durable queue carrying cascade events.
const IntegrityQueueName = "catalogue.integrity"

// Event types. A movie cascade re-deletes reviews for the movie and pulls it
// from favorites; a cast cascade pulls the member from every movie's cast
// set. Both sweeps are idempotent, so replaying a handled event is harmless.
const (
	EventMovieCascade = "movie.cascade"
	EventCastCascade  = "cast.cascade"
)

// IntegrityEvent is published when a handler's inline cascade step fails
// after the parent operation partially completed. It carries just enough to
// re-run the sweep.
type IntegrityEvent struct {
	Type       string    `json:"type"`
	MovieID    string    `json:"movie_id,omitempty"`
	CastID     string    `json:"cast_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
