package invkeeper

import (
	"encoding/json"
	"sort"

	"github.com/everFinance/invkeeper/rawdb"
	"github.com/everFinance/invkeeper/schema"
)

type Store struct {
	KVDb rawdb.KeyValueDB
}

func NewBoltStore(boltDirPath string) (*Store, error) {
	Db, err := rawdb.NewBoltDB(boltDirPath)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: Db}, nil
}

func (s *Store) Close() error {
	return s.KVDb.Close()
}

func (s *Store) SaveObjectId(objectId string) error {
	return s.KVDb.Put(schema.ConstantsBucket, schema.ObjectIdKey, []byte(objectId))
}

// LoadObjectId returns schema.ErrNotExist when no handle is stored.
func (s *Store) LoadObjectId() (string, error) {
	by, err := s.KVDb.Get(schema.ConstantsBucket, schema.ObjectIdKey)
	if err != nil {
		return "", err
	}
	return string(by), nil
}

func (s *Store) DelObjectId() error {
	return s.KVDb.Delete(schema.ConstantsBucket, schema.ObjectIdKey)
}

func (s *Store) SaveTxRecord(record schema.TxRecord) error {
	if record.Digest == "" {
		return schema.ErrNullDigest
	}
	by, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.TxRecordBucket, record.Digest, by)
}

func (s *Store) LoadTxRecord(digest string) (*schema.TxRecord, error) {
	by, err := s.KVDb.Get(schema.TxRecordBucket, digest)
	if err != nil {
		return nil, err
	}
	record := &schema.TxRecord{}
	err = json.Unmarshal(by, record)
	return record, err
}

// TxRecords returns every recorded transaction, oldest first.
func (s *Store) TxRecords() ([]schema.TxRecord, error) {
	digests, err := s.KVDb.GetAllKey(schema.TxRecordBucket)
	if err != nil {
		return nil, err
	}
	records := make([]schema.TxRecord, 0, len(digests))
	for _, digest := range digests {
		record, err := s.LoadTxRecord(digest)
		if err != nil {
			log.Error("s.LoadTxRecord(digest)", "err", err, "digest", digest)
			continue
		}
		records = append(records, *record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}
