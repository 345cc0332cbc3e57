package invkeeper

import (
	"fmt"
)

type Phase string

const (
	PhaseSubmit  Phase = "submit"  // building the operation or waiting on the signer
	PhaseConfirm Phase = "confirm" // waiting for finality or reading the effects
)

// TxError is the failure of one coordinator action. A confirm phase error carries the
// digest: the transaction was submitted and may still land.
type TxError struct {
	Action string
	Phase  Phase
	Digest string
	Err    error
}

func (e *TxError) Error() string {
	if e.Digest == "" {
		return fmt.Sprintf("%s %s failed: %v", e.Action, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s %s failed, digest: %s: %v", e.Action, e.Phase, e.Digest, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// normalizeError turns a recovered panic value into an error.
func normalizeError(v interface{}) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
