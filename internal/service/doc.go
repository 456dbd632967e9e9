// Package service implements the business logic of the NutriLife Campus
// API.
//
// The heart of the package is the registration workflow:
//
//   - AllocationService is the seat allocation engine. It decides
//     confirmed vs. waitlist for a pending registration and commits the
//     decision atomically with the event's seats_left change, retrying
//     on write contention up to a bounded budget.
//   - LifecycleService coordinates what happens around an allocation:
//     on creation it runs the engine and then dispatches exactly one
//     notification with a calendar invite attached; on deletion it
//     releases a previously confirmed seat.
//   - ReminderService sends the administrative bulk reminder.
//
// Both workflows are driven by the trigger bus with at-least-once
// delivery, so every mutation here is idempotent or guarded: a decided
// registration returns its status unchanged, mailed_at is stamped at
// most once, and an unconfirmed registration releases nothing.
//
// Services depend on small store interfaces declared next to their
// consumer and are wired with concrete repositories in main. Errors
// returned to handlers are the sentinels in errors.go.
package service
