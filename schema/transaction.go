package schema

import (
	"encoding/json"
	"fmt"
)

const (
	ContractModule = "contract"

	// contract entry points, also used as action names
	MethodCreate          = "create"
	MethodAddInventory    = "add_inventory"
	MethodRemoveInventory = "remove_inventory"

	// effects execution status
	StatusSuccess = "success"
	StatusFailure = "failure"

	ArgKindObject = "object"
)

func Target(packageId, method string) string {
	return fmt.Sprintf("%s::%s::%s", packageId, ContractModule, method)
}

type Argument struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func ObjectArg(objectId string) Argument {
	return Argument{Kind: ArgKindObject, Value: objectId}
}

type MoveCall struct {
	Target    string     `json:"target"`
	Arguments []Argument `json:"arguments"`
}

// Transaction is the operation descriptor handed to the signer. Its wire encoding is
// the signer's business.
type Transaction struct {
	MoveCalls []MoveCall `json:"moveCalls"`
}

func NewTransaction() *Transaction {
	return &Transaction{MoveCalls: make([]MoveCall, 0, 1)}
}

func (t *Transaction) MoveCall(target string, args ...Argument) {
	if args == nil {
		args = []Argument{}
	}
	t.MoveCalls = append(t.MoveCalls, MoveCall{Target: target, Arguments: args})
}

type ObjectRef struct {
	ObjectId string      `json:"objectId"`
	Version  json.Number `json:"version"`
	Digest   string      `json:"digest"`
}

type OwnedObjectRef struct {
	Owner     json.RawMessage `json:"owner,omitempty"`
	Reference ObjectRef       `json:"reference"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type TransactionEffects struct {
	Status  ExecutionStatus  `json:"status"`
	Created []OwnedObjectRef `json:"created,omitempty"`
	Mutated []OwnedObjectRef `json:"mutated,omitempty"`
	Deleted []ObjectRef      `json:"deleted,omitempty"`
}

func (e *TransactionEffects) Failed() bool {
	return e != nil && e.Status.Status == StatusFailure
}

type TransactionBlock struct {
	Digest     string              `json:"digest"`
	Checkpoint string              `json:"checkpoint,omitempty"`
	Effects    *TransactionEffects `json:"effects,omitempty"`
}
