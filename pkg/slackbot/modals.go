package slackbot

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/carismo/shopmail/pkg/workflow"
)

const (
	actionReply   = "reply_email"
	actionForward = "forward_email"

	replyModalCallback    = "reply_body_modal"
	forwardPickCallback   = "forward_pick_modal"
	forwardReviewCallback = "forward_review_modal"

	replyBodyBlockID  = "body_block"
	replyBodyActionID = "body"
	forwardToBlockID  = "to_block"
	forwardToActionID = "to"
)

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

// actionBlocks renders the Reply/Forward buttons offered under a
// matched notification. The state blob rides along in the button value.
func actionBlocks(subjectGuess, stateBlob string) []slack.Block {
	if subjectGuess == "" {
		subjectGuess = "(unknown subject)"
	}
	section := slack.NewSectionBlock(markdown(fmt.Sprintf("Matched email subject:\n• _%s_", subjectGuess)), nil, nil)
	reply := slack.NewButtonBlockElement(actionReply, stateBlob, plainText("Reply"))
	reply.Style = slack.StylePrimary
	forward := slack.NewButtonBlockElement(actionForward, stateBlob, plainText("Forward"))
	return []slack.Block{section, slack.NewActionBlock("email_actions", reply, forward)}
}

// replyModal collects the operator's message after the thread and
// recipient have been resolved.
func replyModal(st workflow.State) slack.ModalViewRequest {
	input := slack.NewPlainTextInputBlockElement(plainText("Type your reply…"), replyBodyActionID)
	input.Multiline = true
	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      replyModalCallback,
		Title:           plainText("Reply to Customer"),
		Submit:          plainText("Send"),
		Close:           plainText("Cancel"),
		NotifyOnClose:   true,
		PrivateMetadata: st.Encode(),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(markdown("*To:* "+st.ResolvedTo), nil, nil),
			slack.NewSectionBlock(markdown("*Subject:* "+st.ResolvedSubject), nil, nil),
			slack.NewInputBlock(replyBodyBlockID, plainText("Message to customer"), nil, input),
		}},
	}
}

// forwardPickModal offers the fixed team recipient list.
func forwardPickModal(st workflow.State, choices []string) slack.ModalViewRequest {
	options := make([]*slack.OptionBlockObject, 0, len(choices))
	for _, addr := range choices {
		options = append(options, slack.NewOptionBlockObject(addr, plainText(addr), nil))
	}
	picker := slack.NewOptionsMultiSelectBlockElement(slack.MultiOptTypeStatic, plainText("Pick one or more"), forwardToActionID, options...)
	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      forwardPickCallback,
		Title:           plainText("Forward to Team"),
		Submit:          plainText("Review"),
		Close:           plainText("Cancel"),
		NotifyOnClose:   true,
		PrivateMetadata: st.Encode(),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(forwardToBlockID, plainText("Select recipients"), nil, picker),
		}},
	}
}

// forwardReviewModal re-renders the chosen recipients before the send
// is allowed.
func forwardReviewModal(st workflow.State) slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      forwardReviewCallback,
		Title:           plainText("Review Forward"),
		Submit:          plainText("Send"),
		Close:           plainText("Back"),
		NotifyOnClose:   true,
		PrivateMetadata: st.Encode(),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(markdown("*Recipients:* "+strings.Join(st.Recipients, ", ")), nil, nil),
		}},
	}
}
