package modules

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// subscribeAll merges the subscriptions of several topics into one channel.
// The channel closes once every subscription is closed.
func subscribeAll(ctx context.Context, sub message.Subscriber, topics []string) (<-chan *message.Message, error) {
	merged := make(chan *message.Message)
	var wg sync.WaitGroup
	for _, topic := range topics {
		messages, err := sub.Subscribe(ctx, topic)
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(messages <-chan *message.Message) {
			defer wg.Done()
			for msg := range messages {
				select {
				case merged <- msg:
				case <-ctx.Done():
					msg.Nack()
					return
				}
			}
		}(messages)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged, nil
}
