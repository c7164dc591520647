package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Relay forwards pushes to the instance that holds the target connection
// over Redis pub/sub, one channel per instance.
type Relay struct {
	rdb *redis.Client
	hub *Hub
	log *slog.Logger
}

type relayFrame struct {
	Handle string          `json:"handle"`
	Data   json.RawMessage `json:"data"`
}

func NewRelay(rdb *redis.Client, hub *Hub, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	r := &Relay{rdb: rdb, hub: hub, log: log}
	hub.SetRelay(r)
	return r
}

func channelFor(instanceID string) string {
	return "push:" + instanceID
}

func (r *Relay) Publish(ctx context.Context, instanceID, handle string, data []byte) error {
	frame, err := json.Marshal(relayFrame{Handle: handle, Data: data})
	if err != nil {
		return err
	}
	receivers, err := r.rdb.Publish(ctx, channelFor(instanceID), frame).Result()
	if err != nil {
		return fmt.Errorf("relay to %s: %w", instanceID, err)
	}
	if receivers == 0 {
		return fmt.Errorf("relay to %s: %w", instanceID, ErrNoConnection)
	}
	return nil
}

// Run delivers frames addressed to this instance until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, channelFor(r.hub.InstanceID()))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	r.log.Info("relay subscribed", "channel", channelFor(r.hub.InstanceID()))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var f relayFrame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				r.log.Warn("bad relay frame", "error", err)
				continue
			}
			if err := r.hub.deliver(f.Handle, f.Data); err != nil {
				r.log.Debug("relay delivery failed", "connection", f.Handle, "error", err)
			}
		}
	}
}
