//go:build integration

package sink_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"spectra/internal/platform/kafka/producer"
	id "spectra/pkg/domain"
	audit "spectra/pkg/platform/audit"
	"spectra/pkg/platform/audit/sink"
	"spectra/pkg/testutil/containers"
)

type KafkaSinkIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestKafkaSinkIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSinkIntegrationSuite))
}

func (s *KafkaSinkIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())
	p, err := producer.New(producer.DefaultConfig(s.kafka.Brokers), nil)
	s.Require().NoError(err)
	s.producer = p
}

func (s *KafkaSinkIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

func (s *KafkaSinkIntegrationSuite) TestEventIsDelivered() {
	ctx := context.Background()
	topic := "spectra.audit.it"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic))

	userID := id.NewUserID()
	err := sink.NewKafkaSink(s.producer, topic).Emit(ctx, audit.Event{
		Timestamp: time.Now().UTC(),
		Action:    audit.ActionCredentialsIssued,
		UserID:    userID,
	})
	s.Require().NoError(err)

	rec := s.kafka.ReadOne(ctx, topic, 15*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == userID.String()
	})
	s.Require().NotNil(rec)

	var got audit.Event
	s.Require().NoError(json.Unmarshal(rec.Value, &got))
	s.Equal(audit.ActionCredentialsIssued, got.Action)
	s.Equal(userID, got.UserID)
}
