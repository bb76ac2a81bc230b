// Package photodex provides an embeddable Go client for the photodex photo index.
//
// The client talks to the same OpenSearch-compatible index as the photodex
// API server and runs the same keyword extraction and search pipelines
// in-process. Label detection is left to the caller: IndexPhoto takes the
// labels it should store.
//
//	client, _ := photodex.New(ctx,
//	    photodex.WithIndex("search-photos.us-east-1.es.amazonaws.com", "photos"),
//	    photodex.WithSigV4("us-east-1"),
//	)
//	_, _ = client.IndexPhoto(ctx, photodex.PhotoInput{
//	    Bucket:         "photos-bucket",
//	    ObjectKey:      "beach/dog.jpg",
//	    DetectedLabels: []string{"Dog", "Beach"},
//	})
//	photos, _ := client.Search(ctx, "show me dogs")
package photodex
