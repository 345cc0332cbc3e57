package schema

import (
	"errors"
)

var (
	ErrNotExist = errors.New("not_exist_record")

	ErrNullObjectId    = errors.New("null_object_id")
	ErrInvalidObjectId = errors.New("invalid_object_id")
	ErrUnknownNetwork  = errors.New("unknown_network")

	ErrTxNotFound = errors.New("tx_not_found") // not yet finalized or never existed
	ErrTxFailed   = errors.New("tx_execution_failed")
	ErrTxInFlight = errors.New("tx_in_flight")
	ErrSigner     = errors.New("signer_rejected")
	ErrNullDigest = errors.New("null_digest")
)
