//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	"marksman/internal/audit"
	auditkafka "marksman/internal/audit/kafka"
)

const auditTopic = "marksman.audit"

type PublisherSuite struct {
	suite.Suite
	broker    string
	publisher *auditkafka.Publisher
}

func TestPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.3.7")
	s.Require().NoError(err)
	testcontainers.CleanupContainer(s.T(), container)

	s.broker, err = container.KafkaSeedBroker(ctx)
	s.Require().NoError(err)

	s.publisher, err = auditkafka.New([]string{s.broker}, auditTopic)
	s.Require().NoError(err)
}

func (s *PublisherSuite) TearDownSuite() {
	if s.publisher != nil {
		s.publisher.Close()
	}
}

func (s *PublisherSuite) consume(ctx context.Context, want int) []*kgo.Record {
	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(auditTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var records []*kgo.Record
	deadline := time.Now().Add(30 * time.Second)
	for len(records) < want && time.Now().Before(deadline) {
		pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		fetches := consumer.PollFetches(pollCtx)
		cancel()
		fetches.EachRecord(func(r *kgo.Record) {
			records = append(records, r)
		})
	}
	return records
}

func (s *PublisherSuite) TestPublish() {
	ctx := context.Background()
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	subject := "5a3c8a70-9f2e-4d46-9c71-0b41f5a41f77"

	events := []audit.Event{
		{Timestamp: now, Actor: "alice", Action: audit.ActionClaimed, Subject: subject, Role: "range_master"},
		{Timestamp: now.Add(time.Minute), Actor: "alice", Action: audit.ActionRecorded, Subject: subject, Role: "range_master", Note: "scores verified"},
	}
	for _, event := range events {
		s.Require().NoError(s.publisher.Publish(ctx, event))
	}

	records := s.consume(ctx, len(events))
	s.Require().Len(records, len(events))

	// Subject-keyed records land on one partition, so order is preserved.
	for i, record := range records {
		s.Equal(subject, string(record.Key))
		var got audit.Event
		s.Require().NoError(json.Unmarshal(record.Value, &got))
		s.Equal(events[i].Action, got.Action)
		s.Equal(events[i].Note, got.Note)
		s.True(events[i].Timestamp.Equal(got.Timestamp))
	}
}
