package invkeeper

import (
	"context"
	"math"
	"strconv"

	"github.com/everFinance/invkeeper/schema"
	"github.com/tidwall/gjson"
)

const maxSafeInteger = 1<<53 - 1

type ObjectFetcher interface {
	// GetObject returns nil, nil when the object does not exist.
	GetObject(ctx context.Context, objectId string) (*schema.ObjectData, error)
}

// Resolver reads the contract object and decodes it. It never retries and never
// touches coordinator state.
type Resolver struct {
	chain     ObjectFetcher
	packageId string
}

func NewResolver(chain ObjectFetcher, packageId string) *Resolver {
	return &Resolver{chain: chain, packageId: packageId}
}

// Resolve is inert until both a handle and a package id are known: it returns an
// empty resolution without asking the chain.
func (r *Resolver) Resolve(ctx context.Context, objectId string) (schema.Resolution, error) {
	if objectId == "" || r.packageId == "" {
		return schema.Resolution{}, nil
	}
	obj, err := r.chain.GetObject(ctx, objectId)
	if err != nil {
		return schema.Resolution{}, err
	}
	if obj == nil {
		return schema.Resolution{}, nil
	}
	return schema.Resolution{Object: obj, Record: DecodeRecord(obj)}, nil
}

// DecodeRecord returns nil for any payload that is not a well formed inventory object.
func DecodeRecord(obj *schema.ObjectData) *schema.InventoryRecord {
	if obj == nil || obj.Content == nil || obj.Content.DataType != schema.MoveObjectDataType {
		return nil
	}
	if len(obj.Content.Fields) == 0 || !gjson.ValidBytes(obj.Content.Fields) {
		return nil
	}
	fields := gjson.ParseBytes(obj.Content.Fields)
	if !fields.IsObject() {
		return nil
	}
	count, ok := parseCount(fields.Get("inventory_count"))
	if !ok {
		return nil
	}
	owner := fields.Get("owner")
	if !truthy(owner) {
		return nil
	}
	ownerStr := owner.Raw
	if owner.Type == gjson.String {
		ownerStr = owner.Str
	}
	return &schema.InventoryRecord{InventoryCount: count, Owner: ownerStr}
}

// parseCount accepts a base-10 digit string (u64 fields are strings on the wire) or a
// non-negative integral JSON number.
func parseCount(v gjson.Result) (uint64, bool) {
	switch v.Type {
	case gjson.String:
		n, err := strconv.ParseUint(v.Str, 10, 64)
		return n, err == nil
	case gjson.Number:
		if n, err := strconv.ParseUint(v.Raw, 10, 64); err == nil {
			return n, true
		}
		f := v.Float()
		if f < 0 || f > maxSafeInteger || f != math.Trunc(f) {
			return 0, false
		}
		return uint64(f), true
	}
	return 0, false
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Float() != 0
	}
	// missing fields parse as Null, objects and arrays are truthy
	return v.Exists()
}
