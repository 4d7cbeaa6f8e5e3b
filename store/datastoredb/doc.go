/*
Package datastoredb provides an implementation of github.com/alexandre-normand/pagerscot/store's StringStorer interface
backed by the Google Cloud Datastore.

Requirements for the Google Cloud Datastore integration:
  - A valid project id with datastore mode enabled
  - Google Cloud Credentials (typically in the form of a json file with credentials from https://console.cloud.google.com/apis/credentials/serviceaccountkey)

Example code:

	import (
		"github.com/alexandre-normand/pagerscot/store/datastoredb"
		"google.golang.org/api/option"
	)

	func main() {
		// The first argument is this instance's namespace so the plugin name is a good candidate.
		// The second argument is the gcloud project id and the rest are client options, most commonly
		// the path to a json credentials file
		storer, err := datastoredb.New(plugins.PagerDutyPluginName, "youppi", option.WithCredentialsFile(*gcloudCredentialsFile))
		if err != nil {
			log.Fatalf("Opening [%s] db failed: %s", plugins.PagerDutyPluginName, err.Error())
		}
		defer storer.Close()

		...
	}
*/
package datastoredb
