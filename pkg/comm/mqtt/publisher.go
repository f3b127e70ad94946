package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultPublishTimeout bounds the wait for each publish.
const DefaultPublishTimeout = time.Second

// ErrPublishTimeout indicates the broker didn't confirm a publish in time.
var ErrPublishTimeout = errors.New("publish timeout")

// Publisher implements PacketWriter for a single source.
// The retained meta message is published on each (re)connect and cleared by
// the will when the connection is lost.
type Publisher struct {
	Queue   *Queue
	Meta    Meta
	QoS     byte
	Timeout time.Duration

	metaJSON []byte
}

// NewPublisher creates a Publisher.
func NewPublisher(brokerURL string, meta Meta) (*Publisher, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(meta.SourceID), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID(fmt.Sprintf("bitlog:%04x", meta.SourceID))
	}
	p := &Publisher{
		Queue:    NewQueue(opts, topicPrefix),
		Meta:     meta,
		Timeout:  DefaultPublishTimeout,
		metaJSON: metaJSON,
	}
	p.Queue.OnConnect = func(q *Queue) {
		q.PubWith(MetaTopic(p.Meta.SourceID), p.metaJSON, 1, true)
	}
	return p, nil
}

// Connect connects to the broker.
func (p *Publisher) Connect() error {
	return p.Queue.Connect()
}

// WritePacket implements PacketWriter.
func (p *Publisher) WritePacket(pkt []byte) error {
	payload := append([]byte(nil), pkt...)
	token := p.Queue.PubWith(PacketTopic(p.Meta.SourceID), payload, p.QoS, false)
	if p.Timeout > 0 {
		if !token.WaitTimeout(p.Timeout) {
			return ErrPublishTimeout
		}
	} else {
		token.Wait()
	}
	return token.Error()
}

// Close clears the meta and disconnects.
func (p *Publisher) Close() error {
	p.Queue.PubWith(MetaTopic(p.Meta.SourceID), nil, 1, true).WaitTimeout(p.Timeout)
	return p.Queue.Close()
}
