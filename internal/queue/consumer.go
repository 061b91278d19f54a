package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/repository"
)

// Sweeper bundles the repositories the consumer needs to repair an
// interrupted cascade.
type Sweeper struct {
	Movies  *repository.MovieRepo
	Reviews *repository.ReviewRepo
	Users   *repository.UserRepo
}

// Sweep re-runs the cleanup for one event. Every step is idempotent:
// DeleteMany of already-deleted reviews and $pull of absent references
// match nothing.
func (s *Sweeper) Sweep(ctx context.Context, ev IntegrityEvent) error {
	switch ev.Type {
	case EventMovieCascade:
		id, err := primitive.ObjectIDFromHex(ev.MovieID)
		if err != nil {
			return fmt.Errorf("bad movie id %q: %w", ev.MovieID, err)
		}
		if _, err := s.Reviews.DeleteByMovie(ctx, id); err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		return s.Users.PullFavoriteFromAll(ctx, id)
	case EventCastCascade:
		id, err := primitive.ObjectIDFromHex(ev.CastID)
		if err != nil {
			return fmt.Errorf("bad cast id %q: %w", ev.CastID, err)
		}
		return s.Movies.PullCastFromAll(ctx, id)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
}

// StartIntegrityConsumer connects to RabbitMQ, declares the integrity queue
// and consumes cascade events forever, reconnecting with capped backoff when
// the broker drops. Malformed messages are rejected without requeue; sweep
// failures are requeued so the store eventually converges.
func StartIntegrityConsumer(url string, s *Sweeper) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("integrity-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, s); err != nil {
			log.Printf("integrity-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, s *Sweeper) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(IntegrityQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(IntegrityQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev IntegrityEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Printf("integrity-consumer: unmarshal failed: %v", err)
			_ = d.Nack(false, false) // drop, a broken payload never becomes valid
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := s.Sweep(ctx, ev)
		cancel()
		if err != nil {
			log.Printf("integrity-consumer: sweep failed for %s: %v", ev.Type, err)
			_ = d.Nack(false, true) // requeue, the store may just be unavailable
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
