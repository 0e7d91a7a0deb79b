package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/socialgraph/internal/domain"
	pkgkafka "github.com/utafrali/socialgraph/pkg/kafka"
	"github.com/utafrali/socialgraph/pkg/logger"
)

// Event types published by the service, used as both the envelope type and
// the topic name.
var (
	TopicUserRegistered             = pkgkafka.Topic("user", "registered")
	TopicUserUpdated                = pkgkafka.Topic("user", "updated")
	TopicUserDeleted                = pkgkafka.Topic("user", "deleted")
	TopicUserPasswordResetRequested = pkgkafka.Topic("user", "password_reset_requested")
	TopicUserFollowed               = pkgkafka.Topic("user", "followed")
	TopicUserUnfollowed             = pkgkafka.Topic("user", "unfollowed")
)

// AggregateTypeUser is the aggregate type of every event.
const AggregateTypeUser = "user"

// SourceSocialgraph identifies events originating from this service.
const SourceSocialgraph = "socialgraph"

// UserData is the payload for user.registered and user.updated. It never
// carries credentials.
type UserData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserDeletedData is the payload for user.deleted.
type UserDeletedData struct {
	ID string `json:"id"`
}

// PasswordResetRequestedData is the payload for user.password_reset_requested.
// It never carries the reset token.
type PasswordResetRequestedData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// FollowData is the payload for user.followed and user.unfollowed.
type FollowData struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

// Publisher publishes user domain events.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserUpdated(ctx context.Context, user *domain.User) error
	PublishUserDeleted(ctx context.Context, userID string) error
	PublishPasswordResetRequested(ctx context.Context, userID, email string) error
	PublishFollowToggled(ctx context.Context, followerID, followeeID string, action domain.FollowAction) error
}

// kafkaPublisher is the subset of *pkgkafka.Producer used here.
type kafkaPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes user domain events to Kafka.
type Producer struct {
	kafka  kafkaPublisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka kafkaPublisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserRegistered, user.ID, UserData{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserUpdated, user.ID, UserData{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// PublishUserDeleted publishes a user.deleted event.
func (p *Producer) PublishUserDeleted(ctx context.Context, userID string) error {
	return p.publish(ctx, TopicUserDeleted, userID, UserDeletedData{ID: userID})
}

// PublishPasswordResetRequested publishes a user.password_reset_requested event.
func (p *Producer) PublishPasswordResetRequested(ctx context.Context, userID, email string) error {
	return p.publish(ctx, TopicUserPasswordResetRequested, userID, PasswordResetRequestedData{
		UserID: userID,
		Email:  email,
	})
}

// PublishFollowToggled publishes user.followed or user.unfollowed, keyed by
// the follower so one user's toggles stay ordered.
func (p *Producer) PublishFollowToggled(ctx context.Context, followerID, followeeID string, action domain.FollowAction) error {
	topic := TopicUserFollowed
	if action == domain.Unfollowed {
		topic = TopicUserUnfollowed
	}
	return p.publish(ctx, topic, followerID, FollowData{
		FollowerID: followerID,
		FolloweeID: followeeID,
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, AggregateTypeUser, SourceSocialgraph, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
		slog.String("event_id", event.EventID),
	)
	return nil
}

// NoopPublisher drops every event. It is used when no Kafka brokers are
// configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(context.Context, *domain.User) error { return nil }
func (NoopPublisher) PublishUserUpdated(context.Context, *domain.User) error    { return nil }
func (NoopPublisher) PublishUserDeleted(context.Context, string) error          { return nil }
func (NoopPublisher) PublishPasswordResetRequested(context.Context, string, string) error {
	return nil
}
func (NoopPublisher) PublishFollowToggled(context.Context, string, string, domain.FollowAction) error {
	return nil
}

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = NoopPublisher{}
)
