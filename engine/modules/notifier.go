package modules

import (
	"context"
	"fmt"

	"github.com/Luismorlan/rambagiza/engine"
	"github.com/Luismorlan/rambagiza/events"
	"github.com/Luismorlan/rambagiza/presence"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/ThreeDotsLabs/watermill/message"
)

type NotifierConfig struct {
	Name string
}

// Notifier turns bus events into live notices for whoever is online.
type Notifier struct {
	engine.Module

	Config NotifierConfig

	Hub *presence.Hub

	EventBus message.Subscriber
}

func NewNotifier(config NotifierConfig, hub *presence.Hub, e message.Subscriber) *Notifier {
	return &Notifier{
		Config:   config,
		Hub:      hub,
		EventBus: e,
	}
}

// NoticeFromEvent decides who hears about an event and what they see.
func NoticeFromEvent(e events.Event) (userID string, notice *presence.Notice, ok bool) {
	switch e.Type {
	case events.TopicChatMessage:
		return e.TargetID, &presence.Notice{
			Type: e.Type,
			Text: "You have a new message",
			Link: fmt.Sprintf("/chat/%s", e.SubjectID),
			At:   e.At,
		}, true
	case events.TopicSmile:
		return e.TargetID, &presence.Notice{
			Type: e.Type,
			Text: "Someone smiled at you",
			Link: fmt.Sprintf("/showSmile/%s", e.SubjectID),
			At:   e.At,
		}, true
	case events.TopicFriendRequest:
		return e.TargetID, &presence.Notice{
			Type: e.Type,
			Text: "You have a new friend request",
			Link: "/friendRequests",
			At:   e.At,
		}, true
	case events.TopicWalletCredit:
		return e.ActorID, &presence.Notice{
			Type: e.Type,
			Text: "Your wallet has been topped up",
			Link: "/payment",
			At:   e.At,
		}, true
	}
	return "", nil, false
}

func (n *Notifier) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := subscribeAll(ctx, n.EventBus, events.AllTopics)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		e, err := events.Decode(msg)
		if err != nil {
			Logger.Log.Errorf("notifier dropped undecodable message %s: %s", msg.UUID, err)
			continue
		}
		userID, notice, ok := NoticeFromEvent(e)
		if !ok || userID == "" {
			continue
		}
		// Offline users read it from their pages later.
		if err := n.Hub.PushToUser(userID, notice); err != nil && err != presence.ErrNoActiveConnection {
			Logger.Log.Error("fail to push notice: ", err)
		}
	}
	return nil
}

func (n *Notifier) Name() string {
	return n.Config.Name
}
