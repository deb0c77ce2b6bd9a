package sync

// Status is the three-way state a sync component surfaces to consumers
// instead of throwing: still fetching, last fetch complete, or last fetch
// failed. DISABLED is the card catalog's no-wallet state: no poll runs and
// no error is reported.
type Status int

const (
	STATUS_PENDING Status = iota
	STATUS_SUCCESS
	STATUS_ERROR
	STATUS_DISABLED
)

func (status Status) String() string {
	switch status {
	case STATUS_PENDING:
		return "pending"
	case STATUS_SUCCESS:
		return "success"
	case STATUS_ERROR:
		return "error"
	case STATUS_DISABLED:
		return "disabled"
	}
	return "unknown"
}

func (status Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + status.String() + `"`), nil
}
