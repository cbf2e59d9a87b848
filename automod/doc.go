// Moderation decision engine for group chats.
//
// This package (`github.com/truemoder/truemoder/automod`) re-exports the main types of the engine. For every incoming message the engine decides between allowing it, rate-limiting the sender, or a warning, mute, or ban escalating with the sender's violation history, and carries the decision out through an injected chat [Client].
//
// The parts live in sub-packages: `throttle` (per-key minimum interval flood gate), `jail` (per-user violation counters and escalation tiers), `duration` (free-text Russian duration parser for admin commands), `engine` (entry points and the action executor), and `consumer` (update intake and dispatch). See `cmd/truemoder` for a daemon built on this package.
package automod
