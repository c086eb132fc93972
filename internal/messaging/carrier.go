package messaging

import "github.com/segmentio/kafka-go"

// headerCarrier adapts Kafka message headers to the OpenTelemetry
// TextMapCarrier interface so trace context crosses the broker.
type headerCarrier struct {
	msg *kafka.Message
}

func (c headerCarrier) Get(key string) string {
	if h, ok := header(c.msg, key); ok {
		return string(h)
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	setHeader(c.msg, key, []byte(value))
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func header(msg *kafka.Message, key string) ([]byte, bool) {
	for _, h := range msg.Headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return nil, false
}

func setHeader(msg *kafka.Message, key string, value []byte) {
	for i, h := range msg.Headers {
		if h.Key == key {
			msg.Headers[i].Value = value
			return
		}
	}
	msg.Headers = append(msg.Headers, kafka.Header{Key: key, Value: value})
}
