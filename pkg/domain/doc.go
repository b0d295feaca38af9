/*
Package domain contains the core models of the disclosure engine.

It defines the content items subject to reveal gating, the per-view disclosure State, the
signals a host feeds into the engine and the events the engine emits. The package is pure:
no I/O, no clocks, no persistence.

# Key Entities

  - Item: a content block with a fixed position in the reveal order.
  - State: the snapshot of one page view (revealed items, scroll accumulator, pending cascade tasks).
  - Signal: an external trigger (explicit action, scroll delta, time check, direct reveal).
  - RevealEvent: what the host should make visible.
*/
package domain
