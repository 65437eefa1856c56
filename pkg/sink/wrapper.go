package sink

import (
	"encoding/json"

	"github.com/hpctools/sonar/pkg/queue"
)

// wrapper is the (topic,key,value) envelope both the HTTP relay and the
// stdio sink wrap a message's raw payload in; both stamp the sink's
// client identifier, which is omitted when empty.
type wrapper struct {
	Topic  string          `json:"topic"`
	Key    string          `json:"key"`
	Client string          `json:"client,omitempty"`
	Value  json.RawMessage `json:"value"`
}

func wrapMessage(client string, m queue.Message) wrapper {
	return wrapper{Topic: m.Topic, Key: m.Key, Client: client, Value: json.RawMessage(m.Payload)}
}
