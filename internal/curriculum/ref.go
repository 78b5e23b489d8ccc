package curriculum

import "sync/atomic"

var localTokens atomic.Int64

// EntityRef identifies a section or lesson inside an editing session. It is
// either a local draft that the server has never seen, or a persisted entity
// carrying its server-assigned id. Local tokens never leave the process; only
// persisted ids are put on the wire.
type EntityRef struct {
	token    int64
	serverID int64
}

// NewLocalRef mints a ref for a draft created in this session. Tokens are
// unique for the lifetime of the process.
func NewLocalRef() EntityRef {
	return EntityRef{token: localTokens.Add(1)}
}

// PersistedRef wraps a server-assigned id.
func PersistedRef(id int64) EntityRef {
	return EntityRef{serverID: id}
}

// Local reports whether the entity has not been persisted yet.
func (r EntityRef) Local() bool {
	return r.serverID == 0
}

// ServerID returns the server-assigned id, or 0 for local drafts.
func (r EntityRef) ServerID() int64 {
	return r.serverID
}

// Zero reports whether the ref is the zero value, i.e. refers to nothing.
func (r EntityRef) Zero() bool {
	return r.token == 0 && r.serverID == 0
}
