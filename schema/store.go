package schema

var (
	// bucket
	ConstantsBucket = "constants-bucket" // key: ObjectIdKey, val: current object handle
	TxRecordBucket  = "tx-record-bucket" // key: tx digest, val: json.marshal(TxRecord)

	ObjectIdKey = "object-id"
)
