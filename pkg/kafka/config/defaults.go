package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = 1 // leader only; the channel is advisory
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = true
)
