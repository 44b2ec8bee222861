package events

import (
	"encoding/json"
	"time"

	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topics on the in-process event bus. The topic doubles as Event.Type.
const (
	TopicChatMessage   = "chat.message"
	TopicSmile         = "social.smile"
	TopicFriendRequest = "social.friend_request"
	TopicWalletCredit  = "wallet.credit"
)

var AllTopics = []string{
	TopicChatMessage,
	TopicSmile,
	TopicFriendRequest,
	TopicWalletCredit,
}

// Event is the payload of every message on the bus.
type Event struct {
	Type string `json:"type"`
	// ActorID is the user who did something.
	ActorID string `json:"actor_id"`
	// TargetID is the user it was done to, if any.
	TargetID string `json:"target_id,omitempty"`
	// SubjectID is the affected record, e.g. a conversation id.
	SubjectID string    `json:"subject_id,omitempty"`
	At        time.Time `json:"at"`
}

func NewEventBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            100,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)
}

// Publish is fire and forget: a nil publisher is allowed and failures are
// only logged, the caller's write has already been committed.
func Publish(p message.Publisher, e Event) {
	if p == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		Logger.Log.Errorf("fail to marshal event %+v: %s", e, err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := p.Publish(e.Type, msg); err != nil {
		Logger.Log.Errorf("fail to publish event %s: %s", e.Type, err)
	}
}

func Decode(msg *message.Message) (Event, error) {
	var e Event
	err := json.Unmarshal(msg.Payload, &e)
	return e, err
}
