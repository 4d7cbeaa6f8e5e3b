package datastoredb

import (
	"cloud.google.com/go/datastore"
	"context"
	"github.com/alexandre-normand/pagerscot/store"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"time"
)

const (
	testConnectivityKey = "testConnectivity"
	operationTimeout    = 10 * time.Second
)

// DatastoreDB implements the store.StringStorer interface. It maps
// the given name (usually a plugin name) to the datastore entity Kind
// to isolate data between different plugins
type DatastoreDB struct {
	datastorer
	kind string
}

// EntryValue represents an entity/entry value mapped to a datastore key
type EntryValue struct {
	Value string `datastore:",noindex"`
}

// New returns a new instance of DatastoreDB for the given name (which maps to the datastore entity "Kind" and can
// be thought of as the namespace). This function also requires a gcloudProjectID as well as at least one option to provide gcloud client credentials
func New(name string, gcloudProjectID string, gcloudClientOpts ...option.ClientOption) (dsdb *DatastoreDB, err error) {
	return newWithDatastorer(name, &gcdatastore{gcloudProjectID: gcloudProjectID, gcloudClientOpts: gcloudClientOpts})
}

func newWithDatastorer(name string, ds datastorer) (dsdb *DatastoreDB, err error) {
	if err = ds.connect(); err != nil {
		return nil, err
	}

	dsdb = new(DatastoreDB)
	dsdb.datastorer = ds
	dsdb.kind = name

	if err = dsdb.testDB(); err != nil {
		dsdb.Close()
		return nil, err
	}

	return dsdb, nil
}

// testDB makes a lightweight call to the datastore to validate connectivity and credentials
func (dsdb *DatastoreDB) testDB() (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	var e EntryValue
	err = dsdb.Get(ctx, datastore.NameKey(dsdb.kind, testConnectivityKey, nil), &e)
	if err != nil && err != datastore.ErrNoSuchEntity {
		return err
	}

	return nil
}

// withReconnect runs the operation and, on failure, reconnects and runs it one more time
func (dsdb *DatastoreDB) withReconnect(operation func(ctx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	err = operation(ctx)
	if err == nil || err == datastore.ErrNoSuchEntity {
		return err
	}

	if cerr := dsdb.connect(); cerr != nil {
		return errors.Wrapf(cerr, "reconnecting after [%v] failed", err)
	}

	retryCtx, retryCancel := context.WithTimeout(context.Background(), operationTimeout)
	defer retryCancel()

	return operation(retryCtx)
}

// GetString returns the value associated to a given key. If the value is not
// found, store.ErrNotFound is returned
func (dsdb *DatastoreDB) GetString(key string) (value string, err error) {
	k := datastore.NameKey(dsdb.kind, key, nil)

	var e EntryValue
	err = dsdb.withReconnect(func(ctx context.Context) error {
		return dsdb.Get(ctx, k, &e)
	})

	if err == datastore.ErrNoSuchEntity {
		return "", store.ErrNotFound
	}

	if err != nil {
		return "", err
	}

	return e.Value, nil
}

// PutString stores the key/value to the database
func (dsdb *DatastoreDB) PutString(key string, value string) (err error) {
	k := datastore.NameKey(dsdb.kind, key, nil)

	return dsdb.withReconnect(func(ctx context.Context) error {
		_, err := dsdb.Put(ctx, k, &EntryValue{Value: value})
		return err
	})
}
