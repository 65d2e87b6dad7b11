//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"comic_poster/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) config(name string) Config {
	return Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-" + name,
		RoutingKey: "test-routing-key-" + name,
		QueueName:  "test-queue-" + name,
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	pub, err := NewRabbitMQ(s.config("connect"), s.logger)
	s.NoError(err)
	s.NotNil(pub)

	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_ExchangeOnly() {
	cfg := s.config("exchange-only")
	cfg.QueueName = ""

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	report := domain.NewRunReport("garfield", domain.TriggerEvent{Schedule: "daylight-time"})
	report.Status = domain.RunSkipped
	s.NoError(pub.Report(s.ctx, report))
}

func (s *RabbitMQIntegrationSuite) TestPublisher_ReportPosted() {
	cfg := s.config("posted")

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	scheduledAt := time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC)
	report := domain.NewRunReport("garfield", domain.TriggerEvent{ScheduledAt: scheduledAt, Schedule: "daylight-time"})
	report.Status = domain.RunPosted
	report.Date = "2024/03/10"
	report.ComicName = "Garfield"
	report.ContentURL = "https://featureassets.gocomics.com/assets/abc"
	report.Attempts = 2
	report.Delivered = true

	s.NoError(pub.Report(s.ctx, report))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	s.Equal("application/json", msg.ContentType)
	s.Equal("comic.posted", msg.Type)
	s.Equal(report.ID.String(), msg.MessageId)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)

	var received RunMessage
	s.NoError(json.Unmarshal(msg.Body, &received))
	s.Equal("comic.posted", received.Event)
	s.Equal(report.ID, received.Report.ID)
	s.Equal("garfield", received.Report.Slug)
	s.Equal("Garfield", received.Report.ComicName)
	s.Equal(2, received.Report.Attempts)
	s.True(received.Report.Delivered)
	s.True(scheduledAt.Equal(received.Report.ScheduledAt))
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_ReportFailed() {
	cfg := s.config("failed")

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	report := domain.NewRunReport("garfield", domain.TriggerEvent{Schedule: "standard-time"})
	report.Status = domain.RunFailed
	report.Attempts = 3
	report.Error = "select comic: no suitable comic metadata after 3 attempts"

	s.NoError(pub.Report(s.ctx, report))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	var received RunMessage
	s.NoError(json.Unmarshal(msg.Body, &received))
	s.Equal("comic.failed", received.Event)
	s.Equal(report.Error, received.Report.Error)
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
