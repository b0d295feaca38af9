/*
Package session orchestrates server-side access to view state.

A view's disclosure State is loaded, mutated by the engine and saved back under a per-view
lock, so concurrent signals for the same page view are serialized. Locks are reference
counted and garbage collected; a DistributedLocker extends the guarantee across replicas.
*/
package session
