package mqtt

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bitlog.go/pkg/comm"
)

// Subscriber implements TimedPacketReader for packets from all sources.
type Subscriber struct {
	Queue *Queue

	recordCh  chan comm.Record
	closeOnce sync.Once
	done      chan struct{}
	metaLock  sync.RWMutex
	metas     map[uint16]Meta
}

// NewSubscriber creates a Subscriber.
func NewSubscriber(q *Queue) *Subscriber {
	return &Subscriber{
		Queue:    q,
		recordCh: make(chan comm.Record, 16),
		done:     make(chan struct{}),
		metas:    make(map[uint16]Meta),
	}
}

// Sources returns the announced sources ordered by ID.
func (s *Subscriber) Sources() []Meta {
	s.metaLock.RLock()
	defer s.metaLock.RUnlock()
	metas := make([]Meta, 0, len(s.metas))
	for _, m := range s.metas {
		metas = append(metas, m)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].SourceID < metas[j].SourceID })
	return metas
}

// ReadRecord implements TimedPacketReader.
func (s *Subscriber) ReadRecord() (comm.Record, error) {
	select {
	case rec := <-s.recordCh:
		return rec, nil
	case <-s.done:
		return comm.Record{}, io.EOF
	}
}

// ReadPacket implements PacketReader.
func (s *Subscriber) ReadPacket() ([]byte, error) {
	rec, err := s.ReadRecord()
	return rec.Raw, err
}

// Run implements Runnable. It subscribes until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	pktSub := s.Queue.Sub(topicRoot+"/+/"+topicPacket, s.handlePacket)
	defer pktSub.Close()
	metaSub := s.Queue.Sub(topicRoot+"/+/"+topicMeta, s.handleMeta)
	defer metaSub.Close()
	defer s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return nil
	}
}

// Close stops ReadRecord.
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *Subscriber) handlePacket(topic string, payload []byte) {
	rec := comm.Record{Time: time.Now(), Raw: payload}
	select {
	case s.recordCh <- rec:
	case <-s.done:
	}
}

func (s *Subscriber) handleMeta(topic string, payload []byte) {
	id, _, ok := ParseTopic(topic)
	if !ok {
		return
	}
	s.metaLock.Lock()
	defer s.metaLock.Unlock()
	if len(payload) == 0 {
		delete(s.metas, id)
		glog.V(1).Infof("source %04x gone", id)
		return
	}
	var meta Meta
	if err := json.Unmarshal(payload, &meta); err != nil {
		glog.Warningf("%s: bad meta: %v", topic, err)
		return
	}
	s.metas[id] = meta
	glog.V(1).Infof("source %04x: capacity %d %s", id, meta.Capacity, meta.Description)
}
