package schema

import "encoding/json"

const (
	TxStatusSubmitted = "submitted"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
)

// LifecycleState is the transaction side of the view. Pending is reserved for a
// separate awaiting-approval phase and stays false.
type LifecycleState struct {
	Loading             bool
	Pending             bool
	Confirmed           bool
	LastTransactionHash string
	Error               error
}

func (s LifecycleState) MarshalJSON() ([]byte, error) {
	errMsg := ""
	if s.Error != nil {
		errMsg = s.Error.Error()
	}
	return json.Marshal(struct {
		Loading             bool   `json:"loading"`
		Pending             bool   `json:"pending"`
		Confirmed           bool   `json:"confirmed"`
		LastTransactionHash string `json:"lastTransactionHash,omitempty"`
		Error               string `json:"error,omitempty"`
	}{s.Loading, s.Pending, s.Confirmed, s.LastTransactionHash, errMsg})
}

type View struct {
	Data         *InventoryRecord `json:"data"`
	State        LifecycleState   `json:"state"`
	ObjectId     string           `json:"objectId,omitempty"`
	IsOwner      bool             `json:"isOwner"`
	ObjectExists bool             `json:"objectExists"`
	HasValidData bool             `json:"hasValidData"`
}

type TxRecord struct {
	Digest    string `json:"digest"`
	Action    string `json:"action"`
	Status    string `json:"status"` // "submitted", "confirmed", "failed"
	ObjectId  string `json:"objectId,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type TxEvent struct {
	Id        string `json:"id"`
	Action    string `json:"action"`
	Phase     string `json:"phase,omitempty"`
	Digest    string `json:"digest,omitempty"`
	ObjectId  string `json:"objectId,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type RespErr struct {
	Err string `json:"error"`
}

type RespInfo struct {
	Network   string `json:"network"`
	RpcUrl    string `json:"rpcUrl"`
	PackageId string `json:"packageId"`
	Account   string `json:"account,omitempty"`
}

type RespAction struct {
	View View   `json:"view"`
	Err  string `json:"error,omitempty"`
}
