package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamPreservesEmissionOrder(t *testing.T) {
	stream := NewStream(8)
	ctx := context.Background()

	require.NoError(t, stream.Emit(ctx, Event{Kind: EventStatus, Phase: PhaseRetrieving}))
	require.NoError(t, stream.Emit(ctx, Event{Kind: EventText, Text: "hello"}))
	require.NoError(t, stream.Emit(ctx, Event{Kind: EventStatus, Phase: PhaseDone}))
	stream.Close()

	var kinds []EventKind
	for ev := range stream.Events() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventStatus, EventText, EventStatus}, kinds)
}

func TestStreamEmitGivesUpOnCanceledContext(t *testing.T) {
	stream := NewStream(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, stream.Emit(ctx, Event{Kind: EventText, Text: "fills the buffer"}))
	cancel()

	err := stream.Emit(ctx, Event{Kind: EventText, Text: "blocked"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	stream := NewStream(1)
	stream.Close()
	assert.NotPanics(t, stream.Close)
}
