package facades

import (
	"context"
	"encoding/json"
	"time"

	"github.com/authnode/authnode/internal/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// OTPMessage is the payload handed to the external mailer through the
// notification topic.
type OTPMessage struct {
	Reference   string    `json:"reference"`
	Destination string    `json:"destination"`
	Code        string    `json:"code"`
	IssuedAt    time.Time `json:"issued_at"`
}

// KafkaOTPNotifier publishes one-time codes to a Kafka topic consumed by an
// external mailer service.
type KafkaOTPNotifier struct {
	writer KafkaWriter
}

// NewKafkaOTPNotifier creates a notifier over the given Kafka writer.
func NewKafkaOTPNotifier(writer KafkaWriter) *KafkaOTPNotifier {
	return &KafkaOTPNotifier{writer: writer}
}

// SendOneTimeCode publishes the code for out-of-band delivery. Failures are
// logged and reported through the delivered flag only; the code itself is
// never logged.
func (n *KafkaOTPNotifier) SendOneTimeCode(ctx context.Context, destination, code string) (bool, string) {
	reference := uuid.NewString()

	data, err := json.Marshal(OTPMessage{
		Reference:   reference,
		Destination: destination,
		Code:        code,
		IssuedAt:    time.Now().UTC(),
	})
	if err != nil {
		logger.Log.Errorw("failed to marshal OTP message", "reference", reference, "error", err)
		return false, ""
	}

	msg := kafka.Message{
		Key:   []byte(destination),
		Value: data,
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish OTP message", "reference", reference, "error", err)
		return false, ""
	}

	logger.Log.Infow("OTP message published", "reference", reference)
	return true, reference
}

// LogOTPNotifier writes the code to the application log instead of
// delivering it. Development use only: the whole point is making the
// plaintext code visible.
type LogOTPNotifier struct{}

// NewLogOTPNotifier creates a log-only notifier.
func NewLogOTPNotifier() *LogOTPNotifier {
	return &LogOTPNotifier{}
}

// SendOneTimeCode logs the code and always reports delivery.
func (n *LogOTPNotifier) SendOneTimeCode(ctx context.Context, destination, code string) (bool, string) {
	logger.Log.Infow("one-time code issued", "destination", destination, "code", code)
	return true, "log"
}
