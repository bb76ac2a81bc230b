package result

// Result is a single photo search hit.
type Result struct {
	objectKey        string
	bucket           string
	labels           []string
	createdTimestamp string
}

// New creates a search result. Nil labels become an empty list.
func New(objectKey, bucket string, labels []string, createdTimestamp string) Result {
	if labels == nil {
		labels = []string{}
	}
	return Result{
		objectKey: objectKey, bucket: bucket,
		labels: labels, createdTimestamp: createdTimestamp,
	}
}

// ObjectKey returns the photo object key.
func (r *Result) ObjectKey() string { return r.objectKey }

// Bucket returns the photo bucket.
func (r *Result) Bucket() string { return r.bucket }

// Labels returns the indexed labels.
func (r *Result) Labels() []string { return r.labels }

// CreatedTimestamp returns the indexing instant.
func (r *Result) CreatedTimestamp() string { return r.createdTimestamp }
