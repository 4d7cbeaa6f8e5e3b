package datastoredb

import (
	"cloud.google.com/go/datastore"
	"context"
	"google.golang.org/api/option"
	"io"
)

// gcdatastore wraps an actual google cloud datastore Client for real/production datastore interaction
type gcdatastore struct {
	*datastore.Client
	gcloudProjectID  string
	gcloudClientOpts []option.ClientOption
}

// connecter is implemented by any value that has a connect method
type connecter interface {
	connect() (err error)
}

// connect creates a new client instance from the initial gcloud project id and client options.
// Client options that can change during the life of the process (such as option.WithCredentialsFile)
// are picked up again when reconnecting after an error
func (ds *gcdatastore) connect() (err error) {
	ctx := context.Background()

	if ds.Client != nil {
		ds.Client.Close()
	}

	ds.Client, err = datastore.NewClient(ctx, ds.gcloudProjectID, ds.gcloudClientOpts...)
	if err != nil {
		return err
	}

	return nil
}

// datastorer is implemented by any value that implements all of its methods. It is meant
// to allow easier testing decoupled from an actual datastore. Its methods are implemented
// by the embedded *datastore.Client of gcdatastore
type datastorer interface {
	connecter
	io.Closer
	Get(c context.Context, k *datastore.Key, dest interface{}) (err error)
	Put(c context.Context, k *datastore.Key, v interface{}) (key *datastore.Key, err error)
}
