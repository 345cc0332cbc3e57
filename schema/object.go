package schema

import (
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	MoveObjectDataType = "moveObject"
	PackageDataType    = "package"

	idHexLen = 64 // 32 bytes
)

// ObjectData is the object returned by iota_getObject with showContent enabled.
type ObjectData struct {
	ObjectId string         `json:"objectId"`
	Version  json.Number    `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type,omitempty"`
	Content  *ObjectContent `json:"content,omitempty"`
}

type ObjectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"` // loosely typed, decoded by the resolver
}

// InventoryRecord is the decoded contract object. It only exists fully populated.
type InventoryRecord struct {
	InventoryCount uint64 `json:"inventoryCount"`
	Owner          string `json:"owner"`
}

// Resolution is the outcome of one resolver fetch. Object is set whenever the chain
// returned a payload, Record only when that payload decoded.
type Resolution struct {
	Object *ObjectData
	Record *InventoryRecord
}

func (r Resolution) Exists() bool {
	return r.Object != nil
}

func (r Resolution) Valid() bool {
	return r.Record != nil
}

// NormalizeId returns the canonical 0x-prefixed, zero-padded, lower case form of an
// object or package id.
func NormalizeId(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", ErrNullObjectId
	}
	if !strings.HasPrefix(id, "0x") {
		return "", ErrInvalidObjectId
	}
	hexPart := id[2:]
	if len(hexPart) == 0 || len(hexPart) > idHexLen {
		return "", ErrInvalidObjectId
	}
	by, err := hexutil.Decode("0x" + strings.Repeat("0", idHexLen-len(hexPart)) + hexPart)
	if err != nil {
		return "", ErrInvalidObjectId
	}
	return hexutil.Encode(by), nil
}
