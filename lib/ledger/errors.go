package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the object is not (yet) visible on the ledger. It is
	// a soft failure: the next scheduled poll resolves it.
	ErrNotFound = errors.New("object not found on ledger")
)

// RPCError is a JSON-RPC level failure returned by the fullnode.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("ledger rpc error %d: %s", e.Code, e.Message)
}

// MalformedPayloadError reports a ledger payload whose nested field shape did
// not match the expected schema for the entity being decoded.
type MalformedPayloadError struct {
	ObjectID string
	Reason   string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed ledger payload for object %s: %s", e.ObjectID, e.Reason)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsMalformed(err error) bool {
	var malformed *MalformedPayloadError
	return errors.As(err, &malformed)
}
