/*
Package unveil is a progressive disclosure engine for explanation pages.

It decides, for every signal a page receives, whether the next content block should be
revealed: an explicit user action, accumulated scroll distance or elapsed dwell time. Two
trailing blocks are only revealed by a timed cascade once enough blocks have been read.

# Concept

The engine owns the rules; the host owns the state. Every page view gets its own
domain.State, created by Start and passed explicitly to every operation. Nothing is global,
nothing blocks, and time comes from an injected clock so the cascade can be driven by a
virtual clock in tests and simulations.

# Usage

	eng, err := unveil.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	view := eng.Start(ctx, "")

	eng.RevealItem(ctx, view, domain.ItemEscapeWindow)
	eng.HandleExplicitAction(ctx, view)     // reveals the headline
	eng.HandleScrollSignal(ctx, view, 320)  // reveals core-logic
	eng.HandleTimeSignal(ctx, view)         // fires due cascade reveals

Hosts that process a queue of events use Apply, which dispatches a domain.Signal and fires
due cascade reveals around it. See pkg/runner for an in-process real-time driver and
pkg/adapters/http for a server-side host.
*/
package unveil
