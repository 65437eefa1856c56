package sink

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"

	"github.com/hpctools/sonar/pkg/queue"
)

// KafkaConfig carries the subset of the [kafka] configuration section a
// KafkaSink needs; it deliberately mirrors config.Kafka rather than
// importing it, keeping this package free of a config dependency.
type KafkaConfig struct {
	BrokerAddress    string
	CAFile           string
	SASLUser         string
	SASLPassword     string
	SASLPasswordFile string
}

// KafkaSink produces each queued message as one Kafka record, keyed by
// Message.Key, to the topic named by Message.Topic.
type KafkaSink struct {
	client *kgo.Client
	log    zerolog.Logger
}

// NewKafkaSink dials (lazily; kgo.NewClient does not block on the
// network) a producer client against cfg.
func NewKafkaSink(cfg KafkaConfig, log zerolog.Logger) (*KafkaSink, error) {
	if cfg.BrokerAddress == "" {
		return nil, fmt.Errorf("sink: kafka: broker-address is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(strings.Split(cfg.BrokerAddress, ",")...),
		kgo.ClientID("sonar"),
		kgo.ProducerBatchCompression(kgo.SnappyCompression(), kgo.NoCompression()),
	}

	if cfg.CAFile != "" {
		pool := x509.NewCertPool()
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("sink: kafka: reading ca file: %w", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("sink: kafka: no certificates found in %s", cfg.CAFile)
		}
		opts = append(opts, kgo.DialTLSConfig(&tls.Config{RootCAs: pool}))
	}

	password := cfg.SASLPassword
	if cfg.SASLPasswordFile != "" {
		b, err := os.ReadFile(cfg.SASLPasswordFile)
		if err != nil {
			return nil, fmt.Errorf("sink: kafka: reading sasl password file: %w", err)
		}
		password = strings.TrimSpace(string(b))
	}
	if cfg.SASLUser != "" {
		opts = append(opts, kgo.SASL(plain.Auth{User: cfg.SASLUser, Pass: password}.AsMechanism()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("sink: kafka: %w", err)
	}
	return &KafkaSink{client: client, log: log}, nil
}

// Send produces every message in batch and waits for all acks,
// reporting one outcome per message from its own produce callback.
// Authentication and topic-authorization errors are classified fatal so
// the window drops rather than retries that message forever; every
// other per-record error is transient.
func (s *KafkaSink) Send(ctx context.Context, batch []queue.Message) []error {
	outcomes := make([]error, len(batch))
	var wg sync.WaitGroup

	wg.Add(len(batch))
	for i, m := range batch {
		i, m := i, m
		rec := &kgo.Record{Topic: m.Topic, Key: []byte(m.Key), Value: m.Payload}
		s.client.Produce(ctx, rec, func(_ *kgo.Record, err error) {
			defer wg.Done()
			if err == nil {
				return
			}
			if isFatalKafkaErr(err) {
				outcomes[i] = queue.Fatal(fmt.Errorf("sink: kafka: %w", err))
			} else {
				outcomes[i] = fmt.Errorf("sink: kafka: %w", err)
			}
		})
	}
	wg.Wait()
	return outcomes
}

func isFatalKafkaErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SASL") ||
		strings.Contains(msg, "AUTHORIZATION") ||
		strings.Contains(msg, "authentication")
}

// Close releases the underlying client's connections.
func (s *KafkaSink) Close() { s.client.Close() }
