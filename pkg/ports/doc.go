/*
Package ports defines the driven ports (interfaces) used by hosts of the disclosure engine.

The engine itself is stateless rules over an explicit domain.State. Hosts that keep that
state between requests (HTTP, MCP) do so through these interfaces, so the storage backend
can be swapped without touching the rules.

# Key Interfaces

  - ViewStore: Persists and loads the disclosure State of a live page view.
  - DistributedLocker: Provides distributed locking for concurrent signals on one view.

The tests subpackage holds RunViewStoreContract, the suite every ViewStore adapter runs.
*/
package ports
