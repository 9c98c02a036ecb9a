package audit

import (
	"encoding/json"
	"time"
)

// Action tags, mirrored in the admin statistics breakdown.
const (
	ActionUserRegister  = "USER_REGISTER"
	ActionUserLogin     = "USER_LOGIN"
	ActionGetProfile    = "GET_PROFILE"
	ActionCreateEvent   = "CREATE_EVENT"
	ActionUpdateEvent   = "UPDATE_EVENT"
	ActionDeleteEvent   = "DELETE_EVENT"
	ActionCreateProfile = "CREATE_PROFILE"
	ActionUpdateProfile = "UPDATE_PROFILE"
	ActionDeleteProfile = "DELETE_PROFILE"
	ActionGetAuditLogs  = "GET_AUDIT_LOGS"
	ActionGetAuditLog   = "GET_AUDIT_LOG_BY_ID"
	ActionSearchLogs    = "SEARCH_AUDIT_LOGS"
	ActionExportLogs    = "EXPORT_AUDIT_LOGS"
	ActionGetStatistics = "GET_STATISTICS"
)

// Entry records who did what, from where, with what outcome. ActorID is nil
// for unauthenticated actions (a registration attempt has no actor yet).
// Entries are written once and never mutated.
type Entry struct {
	ID            int64           `json:"id"`
	ActorID       *string         `json:"actorId"`
	Action        string          `json:"action"`
	Detail        json.RawMessage `json:"detail"`
	SourceAddress string          `json:"sourceAddress"`
	Timestamp     time.Time       `json:"timestamp"`

	// joined actor columns for the admin views
	ActorName  *string `json:"actorName,omitempty"`
	ActorEmail *string `json:"actorEmail,omitempty"`
}

// DetailJSON marshals an arbitrary detail payload, falling back to a quoted
// string when marshalling fails so an audit write never aborts over detail
// encoding.
func DetailJSON(detail any) json.RawMessage {
	b, err := json.Marshal(detail)

	if err != nil {
		b, _ = json.Marshal(map[string]string{"detail": "unencodable"})
	}

	return b
}
