// Package correlation implements the table that matches synchronous callers
// with the asynchronous replies of the extension peer.
//
// The package focuses on:
//
//   - Keyed waiters: one-shot rendezvous points identified by request kind
//     and application id, consumed by exactly one caller
//   - The broadcast snapshot: a shared last-write-wins item list whose
//     updates wake every subscribed caller at once
//
// Keyed Lifecycle:
//
// A caller registers a waiter, sends its request and blocks on the waiter's
// Done channel. The router completes the waiter when the matching reply
// arrives, the caller then takes the reply out of the table. Timeouts and
// send failures clean the entry up instead, so a reply arriving after the
// deadline is dropped rather than handed to a later caller.
//
// Registering a key that is already pending replaces the previous waiter.
// The replaced caller is not woken, it runs into its timeout. Callers are
// expected to use ids that are unique among concurrent requests of the same
// kind, which holds for user-driven feed reader traffic.
//
// Broadcast Rounds:
//
// Every update closes the current signal channel and installs a fresh one.
// Subscribers grab the channel before sending their refresh request, so a
// signal can never be consumed twice and a fast reply cannot slip between
// send and wait.
package correlation
