// Package slackbot is the chat-platform glue: it watches the configured
// channel for relayed order emails and translates button presses and
// modal submissions into workflow steps. Everything here is thin I/O;
// the decisions live in pkg/workflow.
package slackbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/carismo/shopmail/pkg/classify"
	"github.com/carismo/shopmail/pkg/config"
	"github.com/carismo/shopmail/pkg/interfaces"
	"github.com/carismo/shopmail/pkg/workflow"
)

type Bot struct {
	api          *slack.Client
	socket       *socketmode.Client
	controller   *workflow.Controller
	log          interfaces.Logger
	watchChannel string
}

func New(cfg *config.Config, mailbox interfaces.Mailbox, log interfaces.Logger) *Bot {
	api := slack.New(cfg.SlackBotToken, slack.OptionAppLevelToken(cfg.SlackAppToken))
	b := &Bot{
		api:          api,
		socket:       socketmode.New(api),
		log:          log,
		watchChannel: cfg.WatchChannel,
	}
	b.controller = workflow.NewController(mailbox, b, log, cfg.ForwardChoices)
	return b
}

// Post implements interfaces.Conversation: workflow outcomes land in
// the chat thread the flow started from.
func (b *Bot) Post(ctx context.Context, channel, threadTS, text string) error {
	_, _, err := b.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS))
	return err
}

// Run connects in socket mode and serves events until the context is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		for evt := range b.socket.Events {
			b.dispatch(ctx, evt)
		}
	}()
	b.log.Info(fmt.Sprintf("Watching channel %s for order notifications", b.watchChannel))
	return b.socket.RunContext(ctx)
}

// dispatch routes one socket-mode event. Panics are contained here so
// a single bad payload never takes the event loop down.
func (b *Bot) dispatch(ctx context.Context, evt socketmode.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error(fmt.Sprintf("recovered panic in event handler: %v", r))
		}
	}()

	switch evt.Type {
	case socketmode.EventTypeConnected:
		b.log.Info("Connected to Slack in socket mode")
	case socketmode.EventTypeConnectionError:
		b.log.Warn(fmt.Sprintf("Slack connection error: %v", evt.Data))
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socket.Ack(*evt.Request)
		b.handleEventsAPI(ctx, apiEvent)
	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		b.handleInteraction(ctx, evt, callback)
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}
	ev, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		return
	}
	b.handleMessage(ctx, ev)
}

// allowedSubtypes are the message shapes email-to-Slack relays produce.
var allowedSubtypes = map[string]bool{
	"":                true,
	"file_share":      true,
	"bot_message":     true,
	"message_changed": true,
}

func (b *Bot) handleMessage(ctx context.Context, ev *slackevents.MessageEvent) {
	if b.watchChannel == "" || ev.Channel != b.watchChannel {
		return
	}
	if !allowedSubtypes[ev.SubType] {
		return
	}

	// The events layer normalizes the message payload into ev.Message
	// for plain posts and message_changed edits alike.
	msg := ev.Message
	if msg == nil {
		msg = &slack.Msg{Text: ev.Text, Timestamp: ev.TimeStamp}
	}

	subject := extractSubject(msg)
	if subject == "" {
		b.log.Debug("message carries no subject, skipping")
		return
	}
	norm, ok := classify.Match(subject)
	if !ok {
		b.log.Debug(fmt.Sprintf("subject %q (normalized %q) not recognized", subject, norm))
		return
	}

	ts := msg.Timestamp
	if ts == "" {
		ts = ev.TimeStamp
	}
	st := workflow.State{Channel: ev.Channel, ThreadTS: ts, SubjectGuess: subject}

	if _, _, err := b.api.PostMessageContext(ctx, ev.Channel,
		slack.MsgOptionTS(ts),
		slack.MsgOptionText("Email actions", false),
		slack.MsgOptionBlocks(actionBlocks(subject, st.Encode())...),
	); err != nil {
		b.log.Error(fmt.Sprintf("failed to post action buttons: %v", err))
	}
}

func (b *Bot) handleInteraction(ctx context.Context, evt socketmode.Event, cb slack.InteractionCallback) {
	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		b.socket.Ack(*evt.Request)
		b.handleBlockAction(ctx, cb)
	case slack.InteractionTypeViewSubmission:
		b.handleViewSubmission(ctx, evt, cb)
	case slack.InteractionTypeViewClosed:
		b.socket.Ack(*evt.Request)
		b.controller.Cancel(workflow.DecodeState(cb.View.PrivateMetadata))
	}
}

func (b *Bot) handleBlockAction(ctx context.Context, cb slack.InteractionCallback) {
	if len(cb.ActionCallback.BlockActions) == 0 {
		return
	}
	action := cb.ActionCallback.BlockActions[0]

	st := workflow.DecodeState(action.Value)
	st.Channel = cb.Channel.ID
	if ts := cb.Message.ThreadTimestamp; ts != "" {
		st.ThreadTS = ts
	} else if cb.Message.Timestamp != "" {
		st.ThreadTS = cb.Message.Timestamp
	}

	switch action.ActionID {
	case actionReply:
		b.openReplyModal(ctx, cb.TriggerID, st)
	case actionForward:
		b.openForwardModal(ctx, cb.TriggerID, st)
	}
}

// openReplyModal resolves the customer thread before any input box is
// shown; on resolution failure the controller has already posted the
// terminal message and no modal opens.
func (b *Bot) openReplyModal(ctx context.Context, triggerID string, st workflow.State) {
	if subject := b.resolveSubjectFromThread(ctx, st.Channel, st.ThreadTS); subject != "" {
		st.SubjectGuess = subject
	}
	st, err := b.controller.PrepareReply(ctx, st)
	if err != nil {
		return
	}
	if _, err := b.api.OpenViewContext(ctx, triggerID, replyModal(st)); err != nil {
		b.log.Error(fmt.Sprintf("failed to open reply modal: %v", err))
	}
}

func (b *Bot) openForwardModal(ctx context.Context, triggerID string, st workflow.State) {
	if _, err := b.api.OpenViewContext(ctx, triggerID, forwardPickModal(st, b.controller.ForwardChoices())); err != nil {
		b.log.Error(fmt.Sprintf("failed to open forward modal: %v", err))
	}
}

func (b *Bot) handleViewSubmission(ctx context.Context, evt socketmode.Event, cb slack.InteractionCallback) {
	st := workflow.DecodeState(cb.View.PrivateMetadata)

	switch cb.View.CallbackID {
	case replyModalCallback:
		b.socket.Ack(*evt.Request)
		body := cb.View.State.Values[replyBodyBlockID][replyBodyActionID].Value
		if err := b.controller.CompleteReply(ctx, st, body); err != nil {
			b.log.Error(fmt.Sprintf("reply flow failed: %v", err))
		}

	case forwardPickCallback:
		var recipients []string
		for _, opt := range cb.View.State.Values[forwardToBlockID][forwardToActionID].SelectedOptions {
			recipients = append(recipients, opt.Value)
		}
		if len(recipients) == 0 {
			b.socket.Ack(*evt.Request, slack.NewErrorsViewSubmissionResponse(map[string]string{
				forwardToBlockID: "Pick at least one recipient",
			}))
			return
		}
		st.Recipients = recipients
		review := forwardReviewModal(st)
		b.socket.Ack(*evt.Request, slack.NewUpdateViewSubmissionResponse(&review))

	case forwardReviewCallback:
		b.socket.Ack(*evt.Request)
		if err := b.controller.CompleteForward(ctx, st, st.Recipients); err != nil {
			b.log.Error(fmt.Sprintf("forward flow failed: %v", err))
		}
	}
}

// resolveSubjectFromThread re-reads the root message of the chat thread
// and prefers the relayed email file's own subject over whatever the
// button carried.
func (b *Bot) resolveSubjectFromThread(ctx context.Context, channel, rootTS string) string {
	msgs, _, _, err := b.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channel,
		Timestamp: rootTS,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil || len(msgs) == 0 {
		return ""
	}
	for _, f := range msgs[0].Files {
		if f.Mode != "email" {
			continue
		}
		if f.Subject != "" {
			return strings.TrimSpace(f.Subject)
		}
		if f.Title != "" {
			return strings.TrimSpace(f.Title)
		}
		if info, _, _, err := b.api.GetFileInfoContext(ctx, f.ID, 0, 0); err == nil && info != nil {
			if info.Subject != "" {
				return strings.TrimSpace(info.Subject)
			}
			if info.Title != "" {
				return strings.TrimSpace(info.Title)
			}
		}
	}
	return ""
}
