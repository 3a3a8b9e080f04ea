package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexidrill/lexidrill/internal/quiz"
)

// effectMsg carries one engine effect into the program.
type effectMsg struct {
	effect quiz.Effect
}

// dispatchErrMsg reports a Dispatch call that failed outright.
type dispatchErrMsg struct {
	err error
}

// channelGateway hands effects to the UI loop. Send blocks until the UI
// takes the effect or ctx ends.
type channelGateway struct {
	ch chan quiz.Effect
}

func newChannelGateway() *channelGateway {
	return &channelGateway{ch: make(chan quiz.Effect, 16)}
}

func (g *channelGateway) Send(ctx context.Context, _ string, e quiz.Effect) error {
	select {
	case g.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// next waits for the following effect. It is re-issued after every effectMsg.
func (g *channelGateway) next() tea.Cmd {
	return func() tea.Msg {
		return effectMsg{effect: <-g.ch}
	}
}
