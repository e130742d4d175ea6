// Package telemetry keeps a rolling, queryable log of vehicle notifications.
//
// A Log subscribes to an events.Feed and turns each notification into an
// Entry with a category, a subject and a detail:
//
//	subsystem_changed    ENABLED/DISABLED  name        enabled|disabled
//	subsystem_error      ERROR             name        reason
//	state_changed        STATE             to          "from -> to" or "initial -> to"
//	transition_rejected  REJECTED          command     reason
//	safety_alert         SAFETY            message     (empty)
//	LogInfo              INFO              subject     detail
//
// Storage is an in-memory SQLite database, one per Log, so tail and
// category queries are plain SQL. Nothing is persisted.
package telemetry
