// Package stream delivers debate events to browsers, one JSON frame per event.
package stream

import (
	"iter"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
)

// ErrorNotice is the text shown to viewers when a run aborts. The underlying
// error is logged by the orchestrator, not sent to the client.
const ErrorNotice = "AIとの通信でエラーが発生しました。議論を中断します。"

// Frame is the JSON payload of one event.
type Frame struct {
	Type         string `json:"type"`
	Topic        string `json:"topic,omitempty"`
	Speaker      string `json:"speaker,omitempty"`
	SpeakerClass string `json:"speakerClass,omitempty"`
	Text         string `json:"text,omitempty"`
}

// FrameFor converts an orchestrator event to its wire form.
func FrameFor(ev debate.Event) Frame {
	f := Frame{Type: string(ev.Kind)}
	switch ev.Kind {
	case debate.EventStart:
		f.Topic = ev.Topic
	case debate.EventMessage:
		f.Speaker = ev.Turn.Side.Label()
		f.SpeakerClass = string(ev.Turn.Side)
		f.Text = ev.Turn.Message
	case debate.EventError:
		f.Text = ErrorNotice
	}
	return f
}

// Sink receives frames in order. Send must not return until the frame has
// been handed to the connection.
type Sink interface {
	Send(Frame) error
}

// Pipe forwards every event of seq to sink. It stops at the first send
// failure, which also stops the run behind seq.
func Pipe(seq iter.Seq[debate.Event], sink Sink) error {
	for ev := range seq {
		if err := sink.Send(FrameFor(ev)); err != nil {
			return err
		}
	}
	return nil
}
