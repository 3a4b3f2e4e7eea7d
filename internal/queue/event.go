// Package queue carries the crew.registered event between the API and its
// background consumer over RabbitMQ.
package queue

// CrewRegisteredQueue is the durable queue registration events go to.
const CrewRegisteredQueue = "crew.registered"

// CrewRegisteredEvent is published once a credential and its profile have
// been committed.  It holds enough for downstream consumers to audit or
// notify without reading the primary database.
type CrewRegisteredEvent struct {
	CredentialID string `json:"credential_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Airline      string `json:"airline"`
	Position     string `json:"position"`
	RegisteredAt string `json:"registered_at"`
}
