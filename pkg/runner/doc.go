/*
Package runner drives a single page view in real time.

It is the in-process counterpart of the HTTP host: signals arrive on a queue, are applied to
one engine and one disclosure state in arrival order, and a timer armed from the engine's
next due cascade task fires the cascade without any client involvement. Every reveal is
reported to a Handler as a Decision.

# Key Components

  - Runner: the event loop. Owns the state; nothing else mutates it while Run is active.
  - Handler: receives decisions (TextHandler for terminals, JSONHandler for JSON lines).
  - Feed: reads signals from an io.Reader (one per line) and queues them on a Runner.

# Usage

	r := runner.New(engine,
		runner.WithHandler(runner.NewTextHandler(os.Stdout)),
		runner.WithTickInterval(250*time.Millisecond),
	)

	go runner.Feed(ctx, r, os.Stdin, runner.ParseText)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
